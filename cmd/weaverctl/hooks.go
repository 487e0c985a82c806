package main

import (
	"context"

	"weaveflow/internal/execution"
)

// fanoutHooks runs two execution.LifecycleHooks implementations in
// sequence at each hook point, used to wire both the Prometheus-backed
// driver hooks and the plugin engine's hooks onto the same Execution.
type fanoutHooks struct {
	first, second execution.LifecycleHooks
}

func combineHooks(first, second execution.LifecycleHooks) execution.LifecycleHooks {
	if first == nil {
		return second
	}
	if second == nil {
		return first
	}
	return &fanoutHooks{first: first, second: second}
}

func (h *fanoutHooks) BeforeRun(ctx context.Context) {
	h.first.BeforeRun(ctx)
	h.second.BeforeRun(ctx)
}

func (h *fanoutHooks) AfterRun(ctx context.Context) {
	h.first.AfterRun(ctx)
	h.second.AfterRun(ctx)
}

func (h *fanoutHooks) BeforeNode(ctx context.Context, key string) {
	h.first.BeforeNode(ctx, key)
	h.second.BeforeNode(ctx, key)
}

func (h *fanoutHooks) AfterNode(ctx context.Context, key string) {
	h.first.AfterNode(ctx, key)
	h.second.AfterNode(ctx, key)
}
