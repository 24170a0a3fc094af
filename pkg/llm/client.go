package llm

import (
	"context"
	"errors"
	"strings"

	"signalmail/pkg/news"
)

// ErrNoContent means the model returned no usable text. Callers decide what
// that costs: the welcome flow falls back to a fixed sentence, the digest
// flow skips the recipient.
var ErrNoContent = errors.New("no usable text in model response")

type SummaryClient interface {
	WelcomeIntro(ctx context.Context, profile string) (string, error)
	DigestSummary(ctx context.Context, articles []news.Article) (string, error)
}

func trimmedText(content string) (string, error) {
	text := strings.TrimSpace(content)
	if text == "" {
		return "", ErrNoContent
	}
	return text, nil
}
