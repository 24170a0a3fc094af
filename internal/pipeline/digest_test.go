package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"signalmail/internal/model"
	"signalmail/internal/step"
	"signalmail/pkg/news"

	"github.com/go-playground/assert/v2"
)

type fakeUsers struct {
	users []model.User
	err   error
	calls int
}

func (f *fakeUsers) GetAllForNewsEmail(ctx context.Context) ([]model.User, error) {
	f.calls++
	return f.users, f.err
}

type fakeWatchlists struct {
	symbols map[string][]string
	errFor  map[string]error
	calls   int
}

func (f *fakeWatchlists) SymbolsByEmail(ctx context.Context, email string) ([]string, error) {
	f.calls++
	if err := f.errFor[email]; err != nil {
		return nil, err
	}
	return f.symbols[email], nil
}

type fakeNews struct {
	scoped       map[string][]news.Article // keyed by first requested symbol
	scopedErrFor map[string]error
	general      []news.Article
	generalErr   error
	scopedCalls  int
	generalCalls int
}

func (f *fakeNews) Fetch(ctx context.Context, symbols []string, limit int) ([]news.Article, error) {
	if len(symbols) == 0 {
		f.generalCalls++
		return f.general, f.generalErr
	}
	f.scopedCalls++
	if err := f.scopedErrFor[symbols[0]]; err != nil {
		return nil, err
	}
	return f.scoped[symbols[0]], nil
}

type fakeSummarizer struct {
	introText    string
	introErr     error
	failHeadline string
	digestCalls  int
	lastArticles []news.Article
}

func (f *fakeSummarizer) WelcomeIntro(ctx context.Context, profile string) (string, error) {
	return f.introText, f.introErr
}

func (f *fakeSummarizer) DigestSummary(ctx context.Context, articles []news.Article) (string, error) {
	f.digestCalls++
	f.lastArticles = articles
	for _, a := range articles {
		if f.failHeadline != "" && a.Headline == f.failHeadline {
			return "", errors.New("model unavailable")
		}
	}
	return fmt.Sprintf("digest of %d articles", len(articles)), nil
}

type digestSend struct {
	Email string
	Date  string
	Text  string
}

type fakeMailer struct {
	mu           sync.Mutex
	digests      []digestSend
	digestErrFor map[string]error
	welcomes     []digestSend
	welcomeErr   error
	undelivered  bool
	sendDelay    time.Duration
	inflight     int
	peakInflight int
}

func (f *fakeMailer) SendWelcome(ctx context.Context, email, name, intro string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.welcomeErr != nil {
		return false, f.welcomeErr
	}
	f.welcomes = append(f.welcomes, digestSend{Email: email, Text: intro})
	return !f.undelivered, nil
}

func (f *fakeMailer) SendDigest(ctx context.Context, email, date, digest string) (bool, error) {
	f.mu.Lock()
	f.inflight++
	if f.inflight > f.peakInflight {
		f.peakInflight = f.inflight
	}
	delay := f.sendDelay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inflight--
	if err := f.digestErrFor[email]; err != nil {
		return false, err
	}
	f.digests = append(f.digests, digestSend{Email: email, Date: date, Text: digest})
	return true, nil
}

func (f *fakeMailer) sentDigestEmails() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	emails := make([]string, 0, len(f.digests))
	for _, d := range f.digests {
		emails = append(emails, d.Email)
	}
	return emails
}

func articleList(n int) []news.Article {
	articles := make([]news.Article, n)
	for i := range articles {
		articles[i] = news.Article{Headline: fmt.Sprintf("Article %d", i+1)}
	}
	return articles
}

type deps struct {
	users      *fakeUsers
	watchlists *fakeWatchlists
	news       *fakeNews
	summarizer *fakeSummarizer
	mailer     *fakeMailer
	steps      *step.MemoryRunner
}

func newTestPipeline(d deps) *Pipeline {
	return New(Config{
		Users:      d.users,
		Watchlists: d.watchlists,
		News:       d.news,
		Summarizer: d.summarizer,
		Mailer:     d.mailer,
		Steps:      d.steps,
		Now: func() time.Time {
			return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
		},
	})
}

func defaultDeps() deps {
	return deps{
		users:      &fakeUsers{},
		watchlists: &fakeWatchlists{symbols: map[string][]string{}, errFor: map[string]error{}},
		news:       &fakeNews{scoped: map[string][]news.Article{}, scopedErrFor: map[string]error{}},
		summarizer: &fakeSummarizer{},
		mailer:     &fakeMailer{digestErrFor: map[string]error{}},
		steps:      step.NewMemoryRunner(),
	}
}

func TestRunDigestSuccess(t *testing.T) {
	d := defaultDeps()
	d.users.users = []model.User{
		{Email: "a@x.com", Name: "Ada"},
		{Email: "b@x.com", Name: "Ben"},
	}
	d.watchlists.symbols = map[string][]string{
		"a@x.com": {"AAPL"},
		"b@x.com": {"MSFT"},
	}
	d.news.scoped = map[string][]news.Article{
		"AAPL": articleList(2),
		"MSFT": articleList(3),
	}

	report, err := newTestPipeline(d).RunDigest(context.Background(), "run-1")

	assert.Equal(t, nil, err)
	assert.Equal(t, true, report.Success)
	assert.Equal(t, "Daily news summary emails sent successfully", report.Message)
	assert.Equal(t, 2, len(d.mailer.digests))
	assert.Equal(t, "Monday, August 31, 2026", d.mailer.digests[0].Date)
}

func TestRunDigestNoUsers(t *testing.T) {
	d := defaultDeps()

	report, err := newTestPipeline(d).RunDigest(context.Background(), "run-1")

	assert.Equal(t, nil, err)
	assert.Equal(t, false, report.Success)
	assert.Equal(t, "No users found for news email", report.Message)
	assert.Equal(t, 0, d.watchlists.calls)
	assert.Equal(t, 0, d.summarizer.digestCalls)
	assert.Equal(t, 0, len(d.mailer.digests))
}

func TestRunDigestCapsBundleAtSix(t *testing.T) {
	d := defaultDeps()
	d.users.users = []model.User{{Email: "a@x.com", Name: "Ada"}}
	d.watchlists.symbols = map[string][]string{"a@x.com": {"AAPL"}}
	d.news.scoped = map[string][]news.Article{"AAPL": articleList(10)}

	report, err := newTestPipeline(d).RunDigest(context.Background(), "run-1")

	assert.Equal(t, nil, err)
	assert.Equal(t, true, report.Success)
	assert.Equal(t, 6, len(d.summarizer.lastArticles))
	assert.Equal(t, 0, d.news.generalCalls)
}

func TestRunDigestEmptyScopedFallsBackOnce(t *testing.T) {
	d := defaultDeps()
	d.users.users = []model.User{{Email: "a@x.com", Name: "Ada"}}
	d.watchlists.symbols = map[string][]string{"a@x.com": {"AAPL"}}
	d.news.general = articleList(3)

	report, err := newTestPipeline(d).RunDigest(context.Background(), "run-1")

	assert.Equal(t, nil, err)
	assert.Equal(t, true, report.Success)
	assert.Equal(t, 1, d.news.scopedCalls)
	assert.Equal(t, 1, d.news.generalCalls)
	assert.Equal(t, 3, len(d.summarizer.lastArticles))
}

func TestRunDigestFetchErrorSkipsFallback(t *testing.T) {
	d := defaultDeps()
	d.users.users = []model.User{{Email: "a@x.com", Name: "Ada"}}
	d.watchlists.symbols = map[string][]string{"a@x.com": {"AAPL"}}
	d.news.scopedErrFor = map[string]error{"AAPL": errors.New("finnhub down")}

	report, err := newTestPipeline(d).RunDigest(context.Background(), "run-1")

	assert.Equal(t, nil, err)
	assert.Equal(t, true, report.Success)
	assert.Equal(t, 0, d.news.generalCalls)
	assert.Equal(t, 0, len(d.summarizer.lastArticles))
	assert.Equal(t, 1, len(d.mailer.digests))
}

func TestRunDigestSummarizeFailureIsolated(t *testing.T) {
	d := defaultDeps()
	d.users.users = []model.User{
		{Email: "a@x.com", Name: "Ada"},
		{Email: "b@x.com", Name: "Ben"},
	}
	d.watchlists.symbols = map[string][]string{
		"a@x.com": {"AAPL"},
		"b@x.com": {"MSFT"},
	}
	d.news.scoped = map[string][]news.Article{
		"AAPL": articleList(2),
		"MSFT": {{Headline: "poison"}},
	}
	d.summarizer.failHeadline = "poison"

	report, err := newTestPipeline(d).RunDigest(context.Background(), "run-1")

	assert.Equal(t, nil, err)
	assert.Equal(t, true, report.Success)
	assert.Equal(t, []string{"a@x.com"}, d.mailer.sentDigestEmails())
}

func TestRunDigestSendFailureIsolated(t *testing.T) {
	d := defaultDeps()
	d.users.users = []model.User{
		{Email: "a@x.com", Name: "Ada"},
		{Email: "b@x.com", Name: "Ben"},
	}
	d.watchlists.symbols = map[string][]string{
		"a@x.com": {"AAPL"},
		"b@x.com": {"MSFT"},
	}
	d.news.scoped = map[string][]news.Article{
		"AAPL": articleList(1),
		"MSFT": articleList(1),
	}
	d.mailer.digestErrFor = map[string]error{"a@x.com": errors.New("smtp refused")}

	report, err := newTestPipeline(d).RunDigest(context.Background(), "run-1")

	assert.Equal(t, nil, err)
	assert.Equal(t, true, report.Success)
	assert.Equal(t, []string{"b@x.com"}, d.mailer.sentDigestEmails())
}

func TestRunDigestSendFanOutBounded(t *testing.T) {
	d := defaultDeps()
	d.mailer.sendDelay = 10 * time.Millisecond
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com", "d@x.com"} {
		d.users.users = append(d.users.users, model.User{Email: email})
		symbol := "SYM-" + email
		d.watchlists.symbols[email] = []string{symbol}
		d.news.scoped[symbol] = articleList(1)
	}

	p := New(Config{
		Users:           d.users,
		Watchlists:      d.watchlists,
		News:            d.news,
		Summarizer:      d.summarizer,
		Mailer:          d.mailer,
		Steps:           d.steps,
		SendConcurrency: 2,
	})

	report, err := p.RunDigest(context.Background(), "run-1")

	assert.Equal(t, nil, err)
	assert.Equal(t, true, report.Success)
	assert.Equal(t, 4, len(d.mailer.digests))
	if d.mailer.peakInflight > 2 {
		t.Fatalf("peak in-flight sends %d exceeds bound 2", d.mailer.peakInflight)
	}
}

func TestRunDigestRetrySkipsCompletedStages(t *testing.T) {
	d := defaultDeps()
	d.users.users = []model.User{{Email: "a@x.com", Name: "Ada"}}
	d.watchlists.symbols = map[string][]string{"a@x.com": {"AAPL"}}
	d.news.scoped = map[string][]news.Article{"AAPL": articleList(2)}

	p := newTestPipeline(d)

	_, err := p.RunDigest(context.Background(), "run-1")
	assert.Equal(t, nil, err)
	report, err := p.RunDigest(context.Background(), "run-1")
	assert.Equal(t, nil, err)

	assert.Equal(t, true, report.Success)
	assert.Equal(t, 1, d.users.calls)
	assert.Equal(t, 1, d.news.scopedCalls)
	assert.Equal(t, 1, d.summarizer.digestCalls)
	assert.Equal(t, 1, len(d.mailer.digests))
}
