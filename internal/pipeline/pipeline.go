// Package pipeline hosts the two notification flows: the one-shot welcome
// email for a new user and the daily news digest for all opted-in users.
// Every stage runs through a durable-step runner, so a retried trigger
// resumes where the previous attempt stopped.
package pipeline

import (
	"context"
	"time"

	"signalmail/internal/model"
	"signalmail/internal/step"
	"signalmail/pkg/news"
)

const (
	maxDigestArticles    = 6
	defaultSendLimit     = 8
	dateLayout           = "Monday, January 2, 2006"
	welcomeFallbackIntro = "Thanks for joining Signalmail. You now have the tools to track markets and make smarter moves."
)

// Report is the flow outcome returned to the triggering side.
type Report struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type UserSource interface {
	GetAllForNewsEmail(ctx context.Context) ([]model.User, error)
}

type WatchlistSource interface {
	SymbolsByEmail(ctx context.Context, email string) ([]string, error)
}

type NewsSource interface {
	Fetch(ctx context.Context, symbols []string, limit int) ([]news.Article, error)
}

type Summarizer interface {
	WelcomeIntro(ctx context.Context, profile string) (string, error)
	DigestSummary(ctx context.Context, articles []news.Article) (string, error)
}

type Mailer interface {
	SendWelcome(ctx context.Context, email, name, intro string) (bool, error)
	SendDigest(ctx context.Context, email, date, digest string) (bool, error)
}

type Pipeline struct {
	users      UserSource
	watchlists WatchlistSource
	news       NewsSource
	summarizer Summarizer
	mailer     Mailer
	steps      step.Runner
	now        func() time.Time
	sendLimit  int
}

type Config struct {
	Users      UserSource
	Watchlists WatchlistSource
	News       NewsSource
	Summarizer Summarizer
	Mailer     Mailer
	Steps      step.Runner

	// SendConcurrency bounds the digest delivery fan-out. Zero means the
	// default bound.
	SendConcurrency int

	// Now overrides the clock used for the digest date line. Nil means
	// time.Now.
	Now func() time.Time
}

func New(cfg Config) *Pipeline {
	p := &Pipeline{
		users:      cfg.Users,
		watchlists: cfg.Watchlists,
		news:       cfg.News,
		summarizer: cfg.Summarizer,
		mailer:     cfg.Mailer,
		steps:      cfg.Steps,
		now:        cfg.Now,
		sendLimit:  cfg.SendConcurrency,
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.sendLimit <= 0 {
		p.sendLimit = defaultSendLimit
	}
	return p
}
