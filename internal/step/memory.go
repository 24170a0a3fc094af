package step

import (
	"context"
	"sync"
)

// MemoryRunner memoizes stage results in-process. It backs tests and
// deployments without Redis; checkpoints do not survive a restart.
type MemoryRunner struct {
	mu      sync.Mutex
	results map[string][]byte
}

func NewMemoryRunner() *MemoryRunner {
	return &MemoryRunner{results: make(map[string][]byte)}
}

func (r *MemoryRunner) RunOnce(ctx context.Context, runID, stageID string, fn func(context.Context) ([]byte, error)) ([]byte, error) {
	key := checkpointKey(runID, stageID)

	r.mu.Lock()
	recorded, ok := r.results[key]
	r.mu.Unlock()
	if ok {
		return recorded, nil
	}

	result, err := fn(ctx)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.results[key] = result
	r.mu.Unlock()

	return result, nil
}
