package execution

import (
	"context"
	"fmt"
	"sync"

	"weaveflow/internal/freshness"
	"weaveflow/internal/graph"
)

// Execution drives one run of a Graph's nodes to completion. It is built by
// New, NewSkippingFresh, or Thaw and is not reusable across independent
// node sets; construct a fresh Execution for each run.
type Execution struct {
	mu   sync.Mutex
	cond *sync.Cond

	g     *graph.Graph
	order []*graph.Node // cached topological order, for deterministic dispatch scans

	scheduler     TaskScheduler
	hooks         LifecycleHooks
	removalFilter freshness.RemovalFilter

	shutdownOnFailure bool

	statuses map[string]graph.Status

	state   ExecutionState
	running bool

	completionQueue []completionEvent
	structureQueue  []*graph.Node

	interruptRequested bool
	stored              []error
}

func newExecution(g *graph.Graph, statuses map[string]graph.Status, scheduler TaskScheduler, opts []Option) (*Execution, error) {
	if g == nil {
		return nil, newConstructionError("nil_graph", "graph must not be nil")
	}
	if scheduler == nil {
		return nil, newConstructionError("nil_scheduler", "scheduler must not be nil")
	}

	e := &Execution{
		g:                 g,
		order:             g.TopologicalOrder(),
		scheduler:         scheduler,
		hooks:             NopLifecycleHooks{},
		shutdownOnFailure: true,
		statuses:          statuses,
		state:             StateIdle,
	}
	e.cond = sync.NewCond(&e.mu)
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// State returns the driver's current lifecycle state.
func (e *Execution) State() ExecutionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Statuses returns a snapshot of every node's current status, keyed by node
// key. Mutating the returned map does not affect the Execution.
func (e *Execution) Statuses() map[string]graph.Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]graph.Status, len(e.statuses))
	for k, v := range e.statuses {
		out[k] = v
	}
	return out
}

// SetShutdownOnFailure toggles shutdown-on-failure. It may be called at any
// time, including while Run is in progress.
func (e *Execution) SetShutdownOnFailure(v bool) {
	e.mu.Lock()
	e.shutdownOnFailure = v
	e.mu.Unlock()
}

// Shutdown asks the driver to stop dispatching new work; tasks already
// SCHEDULED run to completion. It is a no-op unless the driver is currently
// RUNNING.
func (e *Execution) Shutdown() {
	e.mu.Lock()
	if e.state == StateRunning {
		e.state = StateShutdown
	}
	e.cond.Broadcast()
	e.mu.Unlock()
}

// Interrupt requests that Run exit as soon as possible, possibly abandoning
// in-flight tasks.
func (e *Execution) Interrupt() {
	e.mu.Lock()
	e.interruptRequested = true
	e.cond.Broadcast()
	e.mu.Unlock()
}

// Run blocks until the workflow settles: no task is SCHEDULED and no
// structure or completion event is queued, or the run was interrupted.
// Nodes downstream of a failure stay NOT_READY rather than reaching a
// terminal state. It is not re-entrant; calling Run
// while a prior call on the same Execution is still in progress returns
// ErrAlreadyRunning immediately.
//
// If ctx carries a deadline or is cancelled, Run treats that the same as an
// explicit Interrupt call.
func (e *Execution) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return ErrAlreadyRunning
	}
	e.running = true
	e.state = StateRunning
	e.mu.Unlock()

	if done := ctx.Done(); done != nil {
		stop := make(chan struct{})
		defer close(stop)
		go func() {
			select {
			case <-done:
				e.Interrupt()
			case <-stop:
			}
		}()
	}

	e.hooks.BeforeRun(ctx)
	defer e.hooks.AfterRun(ctx)

	e.mu.Lock()
	e.dispatchReadyLocked(ctx)

runLoop:
	for e.anyScheduledLocked() || len(e.structureQueue) > 0 || len(e.completionQueue) > 0 {
		switch {
		case len(e.structureQueue) > 0:
			n := e.popStructureLocked()
			e.propagateReadinessLocked(n)
			e.dispatchReadyLocked(ctx)
		case len(e.completionQueue) > 0:
			ev := e.popCompletionLocked()
			e.handleCompletionLocked(ctx, ev)
		default:
			if e.interruptRequested {
				e.stored = append(e.stored, &Interrupted{})
				break runLoop
			}
			e.cond.Wait()
		}
	}

	if e.state == StateRunning || e.state == StateShutdown {
		e.state = StateIdle
	}
	e.running = false
	err := aggregateExceptions(e.stored)
	e.mu.Unlock()

	return err
}

// dispatchReadyLocked scans every node in topological order and dispatches
// each currently READY node: StructureNodes complete synchronously onto the
// structure queue, TaskNodes are submitted to the scheduler. New TaskNode
// dispatch is suppressed once the driver has moved to SHUTDOWN; structure
// nodes still drain since they perform no external call.
func (e *Execution) dispatchReadyLocked(ctx context.Context) {
	for _, n := range e.order {
		st := e.statuses[n.Key()]
		if st.State != graph.StateReady {
			continue
		}
		if n.IsStructureNode() {
			e.setStatusLocked(n, graph.NewStatus(graph.StateSucceeded))
			e.structureQueue = append(e.structureQueue, n)
			continue
		}
		if e.state != StateRunning {
			continue
		}
		e.dispatchTaskLocked(ctx, n)
	}
}

// dispatchTaskLocked submits a single TaskNode to the scheduler. The driver
// lock is released around the call so that a synchronous scheduler may
// invoke the callback (which itself needs the lock) during submit.
func (e *Execution) dispatchTaskLocked(ctx context.Context, n *graph.Node) {
	e.setStatusLocked(n, graph.NewStatus(graph.StateScheduled))
	cb := &driverCallback{exec: e, node: n}
	task := n.Task()

	e.mu.Unlock()
	e.hooks.BeforeNode(ctx, n.Key())
	token, err := e.scheduler.Submit(ctx, task, cb)
	e.mu.Lock()

	if err != nil {
		cb.once.Do(func() {
			e.recordCompletionLocked(n, false, "scheduler submit failed", err)
		})
		return
	}
	if token == nil {
		return
	}

	cur := e.statuses[n.Key()]
	if cur.State == graph.StateScheduled && cur.Token == nil {
		e.setStatusLocked(n, graph.StatusWithToken(token))
	}
}

// recordCompletionLocked transitions n out of SCHEDULED and enqueues its
// completion. Called with e.mu held, either directly (synchronous submit
// failure) or from a driverCallback (which acquires the lock itself). A
// report arriving after the node has already left SCHEDULED is ignored,
// implementing "first report wins".
func (e *Execution) recordCompletionLocked(n *graph.Node, success bool, msg string, cause error) {
	cur := e.statuses[n.Key()]
	if cur.State != graph.StateScheduled {
		return
	}
	next := graph.StateFailed
	if success {
		next = graph.StateSucceeded
	}
	e.setStatusLocked(n, graph.NewStatus(next))
	e.completionQueue = append(e.completionQueue, completionEvent{node: n, success: success, msg: msg, cause: cause})
	e.cond.Broadcast()
}

// handleCompletionLocked processes one dequeued completion: propagating
// readiness on success, or recording a TaskFailure and removing the failed
// node's outputs on failure.
func (e *Execution) handleCompletionLocked(ctx context.Context, ev completionEvent) {
	n := ev.node

	e.mu.Unlock()
	e.hooks.AfterNode(ctx, n.Key())
	e.mu.Lock()

	if ev.success {
		e.propagateReadinessLocked(n)
		e.dispatchReadyLocked(ctx)
		return
	}

	e.stored = append(e.stored, &TaskFailure{NodeKey: n.Key(), Msg: ev.msg, Cause: ev.cause})
	if e.shutdownOnFailure && e.state == StateRunning {
		e.state = StateShutdown
	}

	if task := n.Task(); task != nil {
		e.mu.Unlock()
		removeErr := freshness.RemoveOutputs([]*graph.Node{n}, freshness.ReasonExecutionFailed, e.removalFilter)
		e.mu.Lock()
		if removeErr != nil {
			e.stored = append(e.stored, &OutputIOError{NodeKey: n.Key(), Cause: removeErr})
		}
	}

	// n's dependents are never considered ready: they stay NOT_READY
	// forever because n is FAILED, not SUCCEEDED/IRRELEVANT. Independent
	// branches may still have work, which dispatchReadyLocked picks up
	// unless shutdown-on-failure moved the driver to SHUTDOWN above.
	e.dispatchReadyLocked(ctx)
}

// propagateReadinessLocked moves every dependent of n that is currently
// NOT_READY to READY, provided every one of its dependencies is now in a
// satisfying state.
func (e *Execution) propagateReadinessLocked(n *graph.Node) {
	for _, d := range n.Dependents() {
		st := e.statuses[d.Key()]
		if st.State != graph.StateNotReady {
			continue
		}
		if e.allDependenciesSatisfyLocked(d) {
			e.setStatusLocked(d, graph.NewStatus(graph.StateReady))
		}
	}
}

func (e *Execution) allDependenciesSatisfyLocked(n *graph.Node) bool {
	for _, dep := range n.Dependencies() {
		if !e.statuses[dep.Key()].State.Satisfies() {
			return false
		}
	}
	return true
}

// setStatusLocked assigns n's status, recording an UnexpectedError if the
// state component of the transition is not legal per graph.CanTransition.
// A Status change that only attaches a token to an already-SCHEDULED node
// is not a state transition and is exempt from the check.
func (e *Execution) setStatusLocked(n *graph.Node, status graph.Status) {
	cur := e.statuses[n.Key()]
	if cur.State != status.State && !graph.CanTransition(cur.State, status.State) {
		e.stored = append(e.stored, &UnexpectedError{
			Msg: fmt.Sprintf("illegal transition for node %q: %s -> %s", n.Key(), cur.State, status.State),
		})
	}
	e.statuses[n.Key()] = status
}

func (e *Execution) anyScheduledLocked() bool {
	for _, st := range e.statuses {
		if st.State == graph.StateScheduled {
			return true
		}
	}
	return false
}

func (e *Execution) popStructureLocked() *graph.Node {
	n := e.structureQueue[0]
	e.structureQueue = e.structureQueue[1:]
	return n
}

func (e *Execution) popCompletionLocked() completionEvent {
	ev := e.completionQueue[0]
	e.completionQueue = e.completionQueue[1:]
	return ev
}
