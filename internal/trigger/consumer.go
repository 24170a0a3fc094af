package trigger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"signalmail/internal/model"

	"github.com/redis/go-redis/v9"
)

const (
	maxAttempts  = 3
	popTimeout   = 5 * time.Second
	requeueDelay = 5 * time.Second
)

type eventSource interface {
	Publish(ctx context.Context, ev model.Event) error
	Pop(ctx context.Context, timeout time.Duration) (model.Event, error)
	DeadLetter(ctx context.Context, ev model.Event) error
}

// Consumer pops trigger events and dispatches them to their flows. A failed
// flow is re-enqueued under the same event ID, so completed stages replay
// from their checkpoints; after maxAttempts the event is dead-lettered.
type Consumer struct {
	queue    eventSource
	registry *Registry
	delay    time.Duration
}

func NewConsumer(queue eventSource, registry *Registry) *Consumer {
	return &Consumer{queue: queue, registry: registry, delay: requeueDelay}
}

func (c *Consumer) Run(ctx context.Context) error {
	for {
		ev, err := c.queue.Pop(ctx, popTimeout)
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Error("error popping trigger event", "error", err)
			return err
		}

		c.Handle(ctx, ev)
	}
}

func (c *Consumer) Handle(ctx context.Context, ev model.Event) {
	report, err := c.registry.Dispatch(ctx, ev)
	if err != nil {
		ev.Attempts++
		if ev.Attempts >= maxAttempts {
			slog.Warn("event exceeded max attempts, dead-lettering", "event", ev.Name, "id", ev.ID, "attempts", ev.Attempts, "error", err)
			if dlErr := c.queue.DeadLetter(ctx, ev); dlErr != nil {
				slog.Error("error dead-lettering event", "id", ev.ID, "error", dlErr)
			}
			return
		}

		slog.Error("flow failed, requeueing event", "event", ev.Name, "id", ev.ID, "attempt", ev.Attempts, "error", err)
		if pubErr := c.queue.Publish(ctx, ev); pubErr != nil {
			slog.Error("error requeueing event", "id", ev.ID, "error", pubErr)
		}
		time.Sleep(c.delay)
		return
	}

	slog.Info("flow completed", "event", ev.Name, "id", ev.ID, "success", report.Success, "message", report.Message)
}
