package execution

import "weaveflow/internal/graph"

// Frozen is a serializable snapshot of an Execution: the graph it runs
// against plus one status per node key. See spec §4.7 and §6.5.
type Frozen struct {
	Graph    *graph.Graph
	Statuses map[string]graph.Status
}

// Freeze returns a consistent snapshot of the Execution's current state.
// Any TaskNode stored SCHEDULED without a token is downgraded to READY,
// since the driver may have lost the token racing a crash between submit
// and token capture; the corresponding task must be idempotent under
// re-dispatch on thaw (see spec §9, open questions).
func (e *Execution) Freeze() *Frozen {
	e.mu.Lock()
	defer e.mu.Unlock()

	statuses := make(map[string]graph.Status, len(e.statuses))
	for k, st := range e.statuses {
		if st.State == graph.StateScheduled && st.Token == nil {
			statuses[k] = graph.NewStatus(graph.StateReady)
			continue
		}
		statuses[k] = st
	}
	return &Frozen{Graph: e.g, Statuses: statuses}
}

// validate checks Frozen's invariants: every graph key has exactly one
// status entry, and no StructureNode is ever SCHEDULED.
func (f *Frozen) validate() error {
	if f.Graph == nil {
		return newConstructionError("nil_graph", "frozen snapshot has no graph")
	}
	keys := f.Graph.Keys()
	if len(f.Statuses) != len(keys) {
		return newConstructionError("status_mismatch", "frozen snapshot has %d statuses for %d graph nodes", len(f.Statuses), len(keys))
	}
	for _, k := range keys {
		st, ok := f.Statuses[k]
		if !ok {
			return newConstructionError("status_mismatch", "frozen snapshot is missing a status for node %q", k)
		}
		n, _ := f.Graph.Node(k)
		if n.IsStructureNode() && st.State == graph.StateScheduled {
			return newConstructionError("invalid_status", "structure node %q cannot be SCHEDULED", k)
		}
	}
	return nil
}
