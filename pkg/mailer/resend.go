package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const resendEndpoint = "https://api.resend.com/emails"

type ResendClient struct {
	apiKey     string
	from       string
	httpClient *http.Client
}

func NewResendClient(apiKey, from string) *ResendClient {
	return &ResendClient{
		apiKey:     apiKey,
		from:       from,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *ResendClient) SendWelcome(ctx context.Context, email, name, intro string) (bool, error) {
	return c.send(ctx, email, "Welcome to Signalmail", welcomeHTML(name, intro))
}

func (c *ResendClient) SendDigest(ctx context.Context, email, date, digest string) (bool, error) {
	subject := fmt.Sprintf("Your market digest — %s", date)
	return c.send(ctx, email, subject, digestHTML(date, digest))
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (c *ResendClient) send(ctx context.Context, to, subject, html string) (bool, error) {
	body, err := json.Marshal(sendRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return false, fmt.Errorf("encode send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, resendEndpoint, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("resend send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("resend send: status %d: %s", resp.StatusCode, detail)
	}

	return true, nil
}
