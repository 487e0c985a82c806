package freshness

import (
	"fmt"
	"time"

	"weaveflow/internal/graph"
)

// OutputTimestamp is the validated, post-analysis timestamp of one output:
// Exists is false when the output was missing (and therefore recorded as
// +∞ for invalidation purposes) or when it was overwritten to +∞ because
// its owning node was found invalid.
type OutputTimestamp struct {
	Exists bool
	At     time.Time
}

// TimestampMap holds, for every TaskNode in the analyzed Target, one
// OutputTimestamp per entry of that node's Task.Outputs(), in the same
// order.
type TimestampMap map[string][]OutputTimestamp

// NodeSet is an unordered collection of nodes, used here for the set of
// nodes an analysis found invalid.
type NodeSet map[string]*graph.Node

// Contains reports whether key is present in the set.
func (s NodeSet) Contains(key string) bool {
	_, ok := s[key]
	return ok
}

// Slice returns the set's members in the order supplied by order, skipping
// any keys not present in the set. Passing a target's topological node
// order here yields a deterministic, dependency-first slice.
func (s NodeSet) Slice(order []*graph.Node) []*graph.Node {
	out := make([]*graph.Node, 0, len(s))
	for _, n := range order {
		if s.Contains(n.Key()) {
			out = append(out, n)
		}
	}
	return out
}

// Analyze computes which nodes of target are invalid relative to their
// dependencies' output timestamps, per spec §4.3.
//
// A TaskNode is invalid when the freshest output among its in-target
// dependencies (including their own transitively-propagated invalidation)
// is newer than its own stalest output, or when the node is missing one of
// its own outputs. Both a missing output and a +∞ maxDep compare as "newer
// than everything" via the same posInf value, so a node's own missingness
// cannot be read off maxDep.after(minOut): that comparison is a no-op
// whenever the node's own minOut is already posInf, which is exactly the
// case that matters. Invalidating a node poisons every downstream node
// that depends on it.
func Analyze(target *graph.Target) (invalid NodeSet, timestamps TimestampMap, err error) {
	order := target.Nodes()

	current := make(map[string][]timestamp, len(order))
	ownMissing := make(map[string]bool, len(order))
	for _, n := range order {
		task := n.Task()
		if task == nil {
			continue
		}
		outs := task.Outputs()
		ts := make([]timestamp, len(outs))
		missingAny := len(outs) == 0
		for i, o := range outs {
			at, ok, errTs := o.Timestamp()
			if errTs != nil {
				return nil, nil, fmt.Errorf("freshness: reading timestamp for node %q output %d: %w", n.Key(), i, errTs)
			}
			if !ok {
				ts[i] = missing()
				missingAny = true
				continue
			}
			ts[i] = finite(at)
		}
		current[n.Key()] = ts
		ownMissing[n.Key()] = missingAny
	}

	invalid = make(NodeSet)
	maxDepByKey := make(map[string]timestamp, len(order))

	for _, n := range order {
		maxDep := negInf
		for _, dep := range n.Dependencies() {
			if !target.Contains(dep) {
				continue
			}
			maxDep = maxTimestamp(maxDep, maxOutputTimestamp(current, dep.Key()))
			maxDep = maxTimestamp(maxDep, maxDepByKey[dep.Key()])
		}
		maxDepByKey[n.Key()] = maxDep

		if n.Task() == nil {
			continue
		}

		minOut := minOutputTimestamp(current, n.Key())
		if ownMissing[n.Key()] || maxDep.after(minOut) {
			invalid[n.Key()] = n
			ts := current[n.Key()]
			for i := range ts {
				ts[i] = missing()
			}
		}
	}

	timestamps = make(TimestampMap, len(current))
	for key, ts := range current {
		out := make([]OutputTimestamp, len(ts))
		for i, v := range ts {
			if v.kind == timestampFinite {
				out[i] = OutputTimestamp{Exists: true, At: v.at}
			}
		}
		timestamps[key] = out
	}

	return invalid, timestamps, nil
}

func maxOutputTimestamp(current map[string][]timestamp, key string) timestamp {
	ts := current[key]
	if len(ts) == 0 {
		return negInf
	}
	m := negInf
	for _, v := range ts {
		m = maxTimestamp(m, v)
	}
	return m
}

func minOutputTimestamp(current map[string][]timestamp, key string) timestamp {
	ts := current[key]
	if len(ts) == 0 {
		return posInf
	}
	m := posInf
	for _, v := range ts {
		m = minTimestamp(m, v)
	}
	return m
}
