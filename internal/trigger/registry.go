// Package trigger connects inbound triggers (queued events, the daily
// schedule) to pipeline flows. Bindings are explicit descriptors registered
// at process start.
package trigger

import (
	"context"
	"fmt"

	"signalmail/internal/model"
	"signalmail/internal/pipeline"
)

type FlowFunc func(ctx context.Context, ev model.Event) (pipeline.Report, error)

type Registry struct {
	flows map[string]FlowFunc
}

func NewRegistry() *Registry {
	return &Registry{flows: make(map[string]FlowFunc)}
}

func (r *Registry) On(eventName string, flow FlowFunc) {
	r.flows[eventName] = flow
}

func (r *Registry) Dispatch(ctx context.Context, ev model.Event) (pipeline.Report, error) {
	flow, ok := r.flows[ev.Name]
	if !ok {
		return pipeline.Report{}, fmt.Errorf("no flow bound for event %q", ev.Name)
	}
	return flow(ctx, ev)
}
