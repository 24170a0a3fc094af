package news

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type AlphaVantageClient struct {
	apiKey     string
	httpClient *http.Client
}

func NewAlphaVantageClient(apiKey string) *AlphaVantageClient {
	return &AlphaVantageClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *AlphaVantageClient) Name() string {
	return "AlphaVantage"
}

func (c *AlphaVantageClient) Fetch(ctx context.Context, symbols []string, limit int) ([]Article, error) {
	params := url.Values{}
	params.Set("function", "NEWS_SENTIMENT")
	params.Set("sort", "LATEST")
	params.Set("limit", fmt.Sprintf("%d", limit))
	params.Set("apikey", c.apiKey)
	if len(symbols) > 0 {
		params.Set("tickers", strings.Join(symbols, ","))
	}

	endpoint := "https://www.alphavantage.co/query?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("alphavantage request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alphavantage fetch: %w", err)
	}
	defer resp.Body.Close()

	var raw avResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("alphavantage decode: %w", err)
	}

	articles := make([]Article, 0, len(raw.Feed))
	for _, item := range raw.Feed {
		if len(articles) >= limit {
			break
		}

		publishedAt, err := time.Parse("20060102T150405", item.TimePublished)
		if err != nil {
			publishedAt = time.Time{}
		}

		tickers := make([]string, 0, len(item.TickerSentiment))
		for _, ts := range item.TickerSentiment {
			if ts.Ticker != "" {
				tickers = append(tickers, ts.Ticker)
			}
		}

		articles = append(articles, Article{
			ExternalID:  generateExternalID(item.URL),
			Headline:    item.Title,
			Detail:      item.Summary,
			URL:         item.URL,
			Publisher:   item.Source,
			PublishedAt: publishedAt,
			Symbols:     tickers,
			Source:      c.Name(),
		})
	}

	return articles, nil
}

func generateExternalID(url string) string {
	sum := sha256.Sum256([]byte(url))
	return fmt.Sprintf("%x", sum)[:16]
}

type avResponse struct {
	Feed []avFeedItem `json:"feed"`
}

type avFeedItem struct {
	Title           string              `json:"title"`
	Summary         string              `json:"summary"`
	URL             string              `json:"url"`
	Source          string              `json:"source"`
	TimePublished   string              `json:"time_published"`
	TickerSentiment []avTickerSentiment `json:"ticker_sentiment"`
}

type avTickerSentiment struct {
	Ticker string `json:"ticker"`
}
