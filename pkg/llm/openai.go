package llm

import (
	"context"
	"fmt"

	"signalmail/pkg/news"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type OpenAIClient struct {
	client *openai.Client
	model  openai.ChatModel
}

func NewOpenAIClient(apiKey string) *OpenAIClient {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIClient{
		client: &client,
		model:  openai.ChatModelGPT4oMini,
	}
}

func (c *OpenAIClient) WelcomeIntro(ctx context.Context, profile string) (string, error) {
	return c.complete(ctx, welcomeSystemPrompt, buildWelcomePrompt(profile))
}

func (c *OpenAIClient) DigestSummary(ctx context.Context, articles []news.Article) (string, error) {
	userPrompt, err := buildDigestPrompt(articles)
	if err != nil {
		return "", err
	}
	return c.complete(ctx, digestSystemPrompt, userPrompt)
}

func (c *OpenAIClient) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
	})

	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai: %w", ErrNoContent)
	}

	return trimmedText(resp.Choices[0].Message.Content)
}
