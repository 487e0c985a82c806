package execution

import (
	"fmt"

	"weaveflow/internal/freshness"
	"weaveflow/internal/graph"
)

// New builds an Execution in the "fresh" state (spec §4.5): every node in
// target with no in-target dependency starts READY, every other node in
// target starts NOT_READY, and every node outside target starts IRRELEVANT.
func New(target *graph.Target, scheduler TaskScheduler, opts ...Option) (*Execution, error) {
	if target == nil {
		return nil, newConstructionError("nil_target", "target must not be nil")
	}

	statuses := make(map[string]graph.Status, target.Graph().Len())
	for _, n := range target.Graph().TopologicalOrder() {
		if !target.Contains(n) {
			statuses[n.Key()] = graph.NewStatus(graph.StateIrrelevant)
			continue
		}
		if inTargetDependencyCount(target, n) == 0 {
			statuses[n.Key()] = graph.NewStatus(graph.StateReady)
		} else {
			statuses[n.Key()] = graph.NewStatus(graph.StateNotReady)
		}
	}

	return newExecution(target.Graph(), statuses, scheduler, opts)
}

// NewSkippingFresh builds an Execution that skips nodes whose outputs are
// already fresh (spec §4.5 "fresh-skipping"). It runs the OutputAnalyzer
// over target; the resulting invalid set becomes the nodes-to-run. Every
// other node in target, and every node outside it, starts IRRELEVANT.
//
// The analyzer's topological-order computation of maxDep already closes
// invalidity forward from a node to its dependents (an invalid dependency
// forces its dependent's output timestamp to +∞, which in turn invalidates
// further dependents in the same pass). The invalid set it returns is
// therefore already the full nodes-to-run set; a second closure over
// dependencies would incorrectly pull in upstream nodes whose own outputs
// are still fresh (see DESIGN.md).
func NewSkippingFresh(target *graph.Target, scheduler TaskScheduler, opts ...Option) (*Execution, error) {
	if target == nil {
		return nil, newConstructionError("nil_target", "target must not be nil")
	}

	invalid, _, err := freshness.Analyze(target)
	if err != nil {
		return nil, fmt.Errorf("execution: fresh-skipping analysis: %w", err)
	}

	statuses := make(map[string]graph.Status, target.Graph().Len())
	for _, n := range target.Graph().TopologicalOrder() {
		if !target.Contains(n) || !invalid.Contains(n.Key()) {
			statuses[n.Key()] = graph.NewStatus(graph.StateIrrelevant)
			continue
		}
		if inTargetRunnableDependencyCount(target, invalid, n) == 0 {
			statuses[n.Key()] = graph.NewStatus(graph.StateReady)
		} else {
			statuses[n.Key()] = graph.NewStatus(graph.StateNotReady)
		}
	}

	return newExecution(target.Graph(), statuses, scheduler, opts)
}

// Thaw reconstructs an Execution from a Frozen snapshot, adopting its
// status map verbatim before re-evaluating readiness and re-registering
// scheduler callbacks for in-flight tokens (spec §4.5 "thaw").
func Thaw(frozen *Frozen, scheduler TaskScheduler, opts ...Option) (*Execution, error) {
	if frozen == nil {
		return nil, newConstructionError("nil_frozen", "frozen snapshot must not be nil")
	}
	if err := frozen.validate(); err != nil {
		return nil, err
	}

	statuses := make(map[string]graph.Status, len(frozen.Statuses))
	for k, v := range frozen.Statuses {
		statuses[k] = v
	}

	e, err := newExecution(frozen.Graph, statuses, scheduler, opts)
	if err != nil {
		return nil, err
	}

	type reattach struct {
		node  *graph.Node
		token graph.Token
	}
	var pending []reattach

	e.mu.Lock()
	for _, n := range e.order {
		st := e.statuses[n.Key()]
		switch st.State {
		case graph.StateNotReady:
			if e.allDependenciesSatisfyLocked(n) {
				e.setStatusLocked(n, graph.NewStatus(graph.StateReady))
			}
		case graph.StateScheduled:
			if st.Token == nil {
				continue // left as-is; see spec §9 open question on lost tokens
			}
			pending = append(pending, reattach{node: n, token: st.Token})
		}
	}
	e.mu.Unlock()

	// Callbacks are registered without e.mu held: RegisterCallback may fire
	// the callback before it returns, and the callback acquires e.mu.
	for _, p := range pending {
		cb := &driverCallback{exec: e, node: p.node}
		if regErr := scheduler.RegisterCallback(p.token, cb); regErr != nil {
			return nil, newConstructionError("invalid_token", "re-registering callback for node %q: %v", p.node.Key(), regErr)
		}
	}

	return e, nil
}

func inTargetDependencyCount(target *graph.Target, n *graph.Node) int {
	count := 0
	for _, dep := range n.Dependencies() {
		if target.Contains(dep) {
			count++
		}
	}
	return count
}

func inTargetRunnableDependencyCount(target *graph.Target, invalid freshness.NodeSet, n *graph.Node) int {
	count := 0
	for _, dep := range n.Dependencies() {
		if target.Contains(dep) && invalid.Contains(dep.Key()) {
			count++
		}
	}
	return count
}
