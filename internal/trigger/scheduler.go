package trigger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"signalmail/internal/model"

	"github.com/LerianStudio/lib-uncommons/v2/uncommons/cron"
)

// DefaultDigestCron fires the daily news digest at 12:00 UTC.
const DefaultDigestCron = "0 12 * * *"

type publisher interface {
	Publish(ctx context.Context, ev model.Event) error
}

// Scheduler enqueues a send.daily.news event at each cron fire time.
// Scheduled runs go through the queue like event-triggered ones, so both
// share the same retry and checkpoint path.
type Scheduler struct {
	queue    publisher
	schedule cron.Schedule
	now      func() time.Time
}

func NewScheduler(expr string, queue publisher) (*Scheduler, error) {
	schedule, err := cron.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parse digest cron %q: %w", expr, err)
	}
	return &Scheduler{queue: queue, schedule: schedule, now: time.Now}, nil
}

func (s *Scheduler) Run(ctx context.Context) error {
	for {
		next, err := s.schedule.Next(s.now().UTC())
		if err != nil {
			return fmt.Errorf("compute next digest time: %w", err)
		}

		timer := time.NewTimer(next.Sub(s.now().UTC()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		ev := model.NewDailyNewsEvent()
		if err := s.queue.Publish(ctx, ev); err != nil {
			slog.Error("error enqueueing scheduled digest event", "id", ev.ID, "error", err)
			continue
		}
		slog.Info("scheduled digest event enqueued", "id", ev.ID, "fired_at", next)
	}
}
