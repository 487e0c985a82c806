package execution

import (
	"context"

	"weaveflow/internal/graph"
)

// TaskScheduler is the required external collaborator that actually runs
// TaskNode work. See spec §6.1.
//
// Submit MUST invoke callback exactly once, synchronously or otherwise. If
// the callback fires synchronously before Submit returns, Submit may return
// a nil token; the driver treats a nil token as "no token to capture"
// rather than an error.
//
// RegisterCallback attaches a callback to a token issued by an earlier
// Submit. If the task has already completed, the relevant callback method
// must fire before RegisterCallback returns. It fails with ErrInvalidToken
// if the token is unknown to this scheduler.
type TaskScheduler interface {
	Submit(ctx context.Context, task graph.Task, callback TaskCompletionCallback) (graph.Token, error)
	RegisterCallback(token graph.Token, callback TaskCompletionCallback) error
}

// TaskCompletionCallback receives exactly one report per scheduled task.
// Additional invocations after the first are ignored (see spec §6.2, §9
// "first report wins"). Implementations must be safe to call from any
// goroutine.
type TaskCompletionCallback interface {
	ReportSuccess()
	ReportFailure()
	ReportFailureMsg(msg string)
	ReportFailureCause(cause error)
	ReportFailureMsgCause(msg string, cause error)
}

// LifecycleHooks provides optional synchronous hook points around a run.
// Hooks must be inert: they must not panic and should return quickly, since
// they run inline with the driver loop. Adapted from the teacher's
// dag.LifecycleHooks, re-keyed by node key instead of task ID string.
type LifecycleHooks interface {
	BeforeRun(ctx context.Context)
	AfterRun(ctx context.Context)
	BeforeNode(ctx context.Context, nodeKey string)
	AfterNode(ctx context.Context, nodeKey string)
}

// NopLifecycleHooks is a no-op LifecycleHooks implementation, used as the
// default when no hooks are configured.
type NopLifecycleHooks struct{}

func (NopLifecycleHooks) BeforeRun(context.Context)          {}
func (NopLifecycleHooks) AfterRun(context.Context)           {}
func (NopLifecycleHooks) BeforeNode(context.Context, string) {}
func (NopLifecycleHooks) AfterNode(context.Context, string)  {}
