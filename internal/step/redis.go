package step

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const checkpointTTL = 48 * time.Hour

// RedisRunner checkpoints stage results in Redis so a re-delivered trigger
// resumes its run instead of repeating completed stages.
type RedisRunner struct {
	client *redis.Client
}

func NewRedisRunner(client *redis.Client) *RedisRunner {
	return &RedisRunner{client: client}
}

func (r *RedisRunner) RunOnce(ctx context.Context, runID, stageID string, fn func(context.Context) ([]byte, error)) ([]byte, error) {
	key := checkpointKey(runID, stageID)

	recorded, err := r.client.Get(ctx, key).Bytes()
	if err == nil {
		return recorded, nil
	}
	if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("read checkpoint %s: %w", key, err)
	}

	result, err := fn(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.client.Set(ctx, key, result, checkpointTTL).Err(); err != nil {
		return nil, fmt.Errorf("record checkpoint %s: %w", key, err)
	}

	return result, nil
}

func checkpointKey(runID, stageID string) string {
	return fmt.Sprintf("signalmail:step:%s:%s", runID, stageID)
}
