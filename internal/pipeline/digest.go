package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"signalmail/internal/model"
	"signalmail/internal/step"
	"signalmail/pkg/news"
)

type userNews struct {
	User     model.User     `json:"user"`
	Articles []news.Article `json:"articles"`
}

type userSummary struct {
	User model.User
	// Text is empty when summarization failed; the user is skipped at
	// delivery and never sent a partial message.
	Text string
}

// RunDigest runs the daily news summary for every opted-in user. One user's
// fetch or summarize failure never aborts the batch; only an empty user set
// ends the run, with a failure report.
func (p *Pipeline) RunDigest(ctx context.Context, runID string) (Report, error) {
	users, err := step.Do(ctx, p.steps, runID, "get-all-users", func(ctx context.Context) ([]model.User, error) {
		return p.users.GetAllForNewsEmail(ctx)
	})
	if err != nil {
		return Report{}, fmt.Errorf("load news email users: %w", err)
	}
	if len(users) == 0 {
		return Report{Success: false, Message: "No users found for news email"}, nil
	}

	prepared, err := step.Do(ctx, p.steps, runID, "fetch-user-news", func(ctx context.Context) ([]userNews, error) {
		return p.fetchUserNews(ctx, users), nil
	})
	if err != nil {
		return Report{}, fmt.Errorf("fetch user news: %w", err)
	}

	summaries := make([]userSummary, 0, len(prepared))
	for _, un := range prepared {
		text, err := step.Do(ctx, p.steps, runID, "summarize-news-"+un.User.Email, func(ctx context.Context) (string, error) {
			return p.summarizer.DigestSummary(ctx, un.Articles)
		})
		if err != nil {
			slog.Error("failed to summarize news", "email", un.User.Email, "error", err)
			summaries = append(summaries, userSummary{User: un.User})
			continue
		}
		summaries = append(summaries, userSummary{User: un.User, Text: text})
	}

	if _, err := step.Do(ctx, p.steps, runID, "send-news-emails", func(ctx context.Context) ([]DeliveryOutcome, error) {
		return p.sendDigestBatch(ctx, summaries), nil
	}); err != nil {
		return Report{}, fmt.Errorf("send news emails: %w", err)
	}

	return Report{Success: true, Message: "Daily news summary emails sent successfully"}, nil
}

func (p *Pipeline) fetchUserNews(ctx context.Context, users []model.User) []userNews {
	prepared := make([]userNews, 0, len(users))
	for _, u := range users {
		articles, err := p.fetchForUser(ctx, u.Email)
		if err != nil {
			slog.Error("failed to prepare user news", "email", u.Email, "error", err)
			articles = []news.Article{}
		}
		prepared = append(prepared, userNews{User: u, Articles: articles})
	}
	return prepared
}

// fetchForUser returns up to maxDigestArticles for a user: watchlist-scoped
// news first, then exactly one general fetch when the scoped result is
// empty. A fetch error does not trigger the general fallback; the user
// keeps an empty bundle for this run.
func (p *Pipeline) fetchForUser(ctx context.Context, email string) ([]news.Article, error) {
	symbols, err := p.watchlists.SymbolsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("load watchlist symbols: %w", err)
	}

	articles, err := p.news.Fetch(ctx, symbols, maxDigestArticles)
	if err != nil {
		return nil, fmt.Errorf("scoped news fetch: %w", err)
	}

	if len(articles) == 0 && len(symbols) > 0 {
		articles, err = p.news.Fetch(ctx, nil, maxDigestArticles)
		if err != nil {
			return nil, fmt.Errorf("general news fetch: %w", err)
		}
	}

	if len(articles) > maxDigestArticles {
		articles = articles[:maxDigestArticles]
	}
	return articles, nil
}
