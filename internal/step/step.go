// Package step provides memoized, at-most-once-effect stage execution for
// pipeline runs. A stage that has recorded a result for a given run is not
// re-executed when the run is retried; a stage that failed left no record
// and runs again.
package step

import (
	"context"
	"encoding/json"
	"fmt"
)

type Runner interface {
	// RunOnce returns the recorded result for (runID, stageID) if present,
	// otherwise executes fn and records its result on success.
	RunOnce(ctx context.Context, runID, stageID string, fn func(context.Context) ([]byte, error)) ([]byte, error)
}

// Do runs fn as a memoized stage, moving its result through JSON so a
// replayed stage yields the same value the original execution produced.
func Do[T any](ctx context.Context, r Runner, runID, stageID string, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	raw, err := r.RunOnce(ctx, runID, stageID, func(ctx context.Context) ([]byte, error) {
		v, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return zero, err
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, fmt.Errorf("decode stage %q result: %w", stageID, err)
	}
	return out, nil
}
