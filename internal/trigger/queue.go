package trigger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"signalmail/db"
	"signalmail/internal/model"

	"github.com/redis/go-redis/v9"
)

// EventQueue moves trigger envelopes through Redis. The API pushes, the
// worker pops; failed events go to the dead-letter list after exhausting
// their attempts.
type EventQueue struct {
	client  *redis.Client
	key     string
	deadKey string
}

func NewEventQueue(client *redis.Client) *EventQueue {
	return &EventQueue{
		client:  client,
		key:     db.EventQueueKey,
		deadKey: db.DeadLetterKey,
	}
}

func (q *EventQueue) Publish(ctx context.Context, ev model.Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", ev.ID, err)
	}
	return q.client.LPush(ctx, q.key, raw).Err()
}

// Pop blocks up to timeout for the next event. It returns redis.Nil when
// the wait times out with nothing queued.
func (q *EventQueue) Pop(ctx context.Context, timeout time.Duration) (model.Event, error) {
	result, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		return model.Event{}, err
	}

	var ev model.Event
	if err := json.Unmarshal([]byte(result[1]), &ev); err != nil {
		return model.Event{}, fmt.Errorf("decode event: %w", err)
	}
	return ev, nil
}

func (q *EventQueue) DeadLetter(ctx context.Context, ev model.Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", ev.ID, err)
	}
	return q.client.LPush(ctx, q.deadKey, raw).Err()
}
