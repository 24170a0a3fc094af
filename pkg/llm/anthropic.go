package llm

import (
	"context"
	"fmt"

	"signalmail/pkg/news"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type AnthropicClient struct {
	client *anthropic.Client
	model  anthropic.Model
}

func NewAnthropicClient(apiKey string) *AnthropicClient {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicClient{
		client: &client,
		model:  anthropic.ModelClaudeHaiku4_5,
	}
}

func (c *AnthropicClient) WelcomeIntro(ctx context.Context, profile string) (string, error) {
	return c.complete(ctx, welcomeSystemPrompt, buildWelcomePrompt(profile))
}

func (c *AnthropicClient) DigestSummary(ctx context.Context, articles []news.Article) (string, error) {
	userPrompt, err := buildDigestPrompt(articles)
	if err != nil {
		return "", err
	}
	return c.complete(ctx, digestSystemPrompt, userPrompt)
}

func (c *AnthropicClient) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})

	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}

	if len(resp.Content) == 0 {
		return "", fmt.Errorf("no response from anthropic: %w", ErrNoContent)
	}

	return trimmedText(resp.Content[0].Text)
}
