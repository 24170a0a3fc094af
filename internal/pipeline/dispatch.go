package pipeline

import (
	"context"
	"log/slog"
	"sync"
)

// DeliveryOutcome records one digest send attempt. Outcomes feed the run's
// log only; they are never persisted.
type DeliveryOutcome struct {
	Email     string `json:"email"`
	Delivered bool   `json:"delivered"`
}

// sendDigestBatch fans out one send per user with a usable summary and
// waits for all of them to settle. A failed send is logged and reported in
// its outcome; it never blocks the other sends or the run.
func (p *Pipeline) sendDigestBatch(ctx context.Context, summaries []userSummary) []DeliveryOutcome {
	date := p.now().Format(dateLayout)

	qualified := make([]userSummary, 0, len(summaries))
	for _, s := range summaries {
		if s.Text == "" {
			slog.Warn("skipping digest recipient without summary", "email", s.User.Email)
			continue
		}
		qualified = append(qualified, s)
	}

	outcomes := make([]DeliveryOutcome, len(qualified))
	sem := make(chan struct{}, p.sendLimit)
	var wg sync.WaitGroup

	for i, s := range qualified {
		wg.Add(1)
		go func(i int, s userSummary) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			delivered, err := p.mailer.SendDigest(ctx, s.User.Email, date, s.Text)
			if err != nil {
				slog.Error("failed to send news summary email", "email", s.User.Email, "error", err)
			}
			outcomes[i] = DeliveryOutcome{Email: s.User.Email, Delivered: delivered && err == nil}
		}(i, s)
	}

	wg.Wait()

	delivered := 0
	for _, o := range outcomes {
		if o.Delivered {
			delivered++
		}
	}
	slog.Info("digest delivery settled", "attempted", len(outcomes), "delivered", delivered)

	return outcomes
}
