package telemetry

import (
	"context"

	"weaveflow/internal/execution"
	"weaveflow/internal/graph"
)

// StatusSource is satisfied by *execution.Execution; it is narrowed to an
// interface here so DriverHooks can be unit tested against a fake.
type StatusSource interface {
	Statuses() map[string]graph.Status
}

// DriverHooks adapts DriverMetrics to execution.LifecycleHooks. It counts a
// dispatch on every BeforeNode call, then tallies final succeeded/failed
// counts once at AfterRun by reading the execution's terminal status map —
// node-level success/failure is not observable from AfterNode's signature
// alone (it carries only the node key), so per-node counting happens once,
// in bulk, when the run settles.
//
// DriverHooks must be attached to its Execution after construction: the
// hooks are passed to execution.New via WithLifecycleHooks before the
// *Execution exists, so source starts nil and callers call Attach with the
// freshly constructed Execution before the first Run.
type DriverHooks struct {
	metrics *DriverMetrics
	source  StatusSource
}

// NewDriverHooks returns hooks that report into metrics. Call Attach before
// the first Run to supply the status source.
func NewDriverHooks(metrics *DriverMetrics) *DriverHooks {
	return &DriverHooks{metrics: metrics}
}

// Attach supplies the StatusSource (normally the *execution.Execution these
// hooks were passed to via WithLifecycleHooks) that AfterRun reads final
// statuses from.
func (h *DriverHooks) Attach(source StatusSource) {
	h.source = source
}

func (h *DriverHooks) BeforeRun(context.Context) {}

func (h *DriverHooks) AfterRun(context.Context) {
	if h.source == nil {
		return
	}
	for _, st := range h.source.Statuses() {
		switch st.State {
		case graph.StateSucceeded:
			h.metrics.NodeSucceeded()
		case graph.StateFailed:
			h.metrics.NodeFailed()
		}
	}
}

func (h *DriverHooks) BeforeNode(_ context.Context, _ string) {
	h.metrics.NodeDispatched()
}

func (h *DriverHooks) AfterNode(context.Context, string) {}

var _ execution.LifecycleHooks = (*DriverHooks)(nil)
