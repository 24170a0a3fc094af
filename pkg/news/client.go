package news

import (
	"context"
	"time"
)

type Article struct {
	ExternalID  string    `json:"external_id"`
	Headline    string    `json:"headline"`
	Detail      string    `json:"detail"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	Symbols     []string  `json:"symbols"`
	Publisher   string    `json:"publisher"`
}

// NewsClient fetches recent articles. An empty symbols slice means general
// market news; a non-empty slice scopes the query to those tickers.
type NewsClient interface {
	Fetch(ctx context.Context, symbols []string, limit int) ([]Article, error)
	Name() string
}
