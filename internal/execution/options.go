package execution

import "weaveflow/internal/freshness"

// Option configures an Execution at construction time, applied by New,
// NewSkippingFresh, and Thaw.
type Option func(*Execution)

// WithLifecycleHooks installs hooks invoked around the run and around each
// node's dispatch/completion. A nil hooks value is ignored.
func WithLifecycleHooks(hooks LifecycleHooks) Option {
	return func(e *Execution) {
		if hooks != nil {
			e.hooks = hooks
		}
	}
}

// WithRemovalFilter installs the filter consulted before deleting a failed
// node's outputs (see freshness.RemoveOutputs).
func WithRemovalFilter(filter freshness.RemovalFilter) Option {
	return func(e *Execution) { e.removalFilter = filter }
}

// WithShutdownOnFailure sets the initial shutdown-on-failure flag. Default
// is true; pass false to let independent branches keep running after a
// task failure.
func WithShutdownOnFailure(v bool) Option {
	return func(e *Execution) { e.shutdownOnFailure = v }
}
