package graph

import (
	"regexp"
	"time"
)

// keyPattern is the stable identifier format required of every node key.
var keyPattern = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9_-]{0,254}[A-Za-z0-9])?$`)

// ValidKey reports whether s is a legal node key.
func ValidKey(s string) bool {
	return keyPattern.MatchString(s)
}

// Task is an opaque unit of work supplied by the caller. Outputs must be
// stable across calls: two invocations must describe the same collection
// of Output values (by reference identity).
type Task interface {
	Outputs() []Output
}

// Output is an opaque external artifact. Timestamp returns the zero time
// with ok=false when the output does not exist; a missing output is
// treated as "newer than everything" by the freshness analyzer so that it
// forces re-execution of its owning node.
type Output interface {
	Timestamp() (t time.Time, ok bool, err error)
	Delete() error
}

// Node is one member of a Graph: either a TaskNode (carries a Task) or a
// StructureNode (a pure dependency linker used to reduce the edge count of
// fan-in/fan-out patterns). Structure nodes are never dispatched to a
// TaskScheduler.
type Node struct {
	key   string
	task  Task // nil for a StructureNode
	index int  // position in the graph's topological order

	dependencies nodeSet
	dependents   nodeSet
}

// Key returns the node's stable identifier.
func (n *Node) Key() string { return n.key }

// Task returns the node's task, or nil if this is a StructureNode.
func (n *Node) Task() Task { return n.task }

// IsStructureNode reports whether this node carries no task.
func (n *Node) IsStructureNode() bool { return n.task == nil }

// Dependencies returns the set of nodes this node depends on.
func (n *Node) Dependencies() []*Node { return n.dependencies.slice() }

// Dependents returns the set of nodes that depend on this node. This is an
// inverse relation computed at construction time, not an owning reference;
// it must never be serialized (see Frozen in package execution).
func (n *Node) Dependents() []*Node { return n.dependents.slice() }

// nodeSet is an unordered, deduplicated collection of *Node keyed by
// pointer identity; slice builds a fresh sorted-by-key view on each call
// for deterministic iteration.
type nodeSet struct {
	byPtr map[*Node]struct{}
}

func newNodeSet() nodeSet {
	return nodeSet{byPtr: make(map[*Node]struct{})}
}

func (s *nodeSet) add(n *Node) {
	if s.byPtr == nil {
		s.byPtr = make(map[*Node]struct{})
	}
	s.byPtr[n] = struct{}{}
}

func (s nodeSet) contains(n *Node) bool {
	_, ok := s.byPtr[n]
	return ok
}

func (s nodeSet) len() int { return len(s.byPtr) }

func (s nodeSet) slice() []*Node {
	out := make([]*Node, 0, len(s.byPtr))
	for n := range s.byPtr {
		out = append(out, n)
	}
	sortNodesByKey(out)
	return out
}

func sortNodesByKey(nodes []*Node) {
	// Small N in practice; insertion sort keeps this file free of a sort
	// import collision with callers that alias "sort".
	for i := 1; i < len(nodes); i++ {
		for j := i; j > 0 && nodes[j-1].key > nodes[j].key; j-- {
			nodes[j-1], nodes[j] = nodes[j], nodes[j-1]
		}
	}
}

// NodeState is the coarse execution status of a node. See the package-level
// transition table enforced by CanTransition.
type NodeState int

const (
	StateIrrelevant NodeState = iota
	StateNotReady
	StateReady
	StateScheduled
	StateSucceeded
	StateFailed
)

func (s NodeState) String() string {
	switch s {
	case StateIrrelevant:
		return "IRRELEVANT"
	case StateNotReady:
		return "NOT_READY"
	case StateReady:
		return "READY"
	case StateScheduled:
		return "SCHEDULED"
	case StateSucceeded:
		return "SUCCEEDED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Satisfies reports whether a node in this state satisfies a dependency,
// i.e. whether downstream nodes may proceed.
func (s NodeState) Satisfies() bool {
	return s == StateIrrelevant || s == StateSucceeded
}

// Terminal reports whether the state has no outgoing transitions.
func (s NodeState) Terminal() bool {
	return s == StateIrrelevant || s == StateSucceeded || s == StateFailed
}

// CanTransition reports whether the transition from -> to is legal per the
// state machine in spec §3. Self-transitions are never legal: a state
// change always moves forward.
func CanTransition(from, to NodeState) bool {
	switch from {
	case StateNotReady:
		return to == StateReady
	case StateReady:
		return to == StateScheduled || to == StateSucceeded
	case StateScheduled:
		return to == StateSucceeded || to == StateFailed
	default:
		return false
	}
}

// Token is an opaque scheduler-issued handle identifying an in-flight task
// instance. Only TaskNodes carry a token, and only while SCHEDULED.
type Token interface{}

// Status is either a bare NodeState, or StateScheduled plus a Token. The
// zero value equals NewStatus(StateIrrelevant).
type Status struct {
	State NodeState
	Token Token // non-nil only when State == StateScheduled and a token has been captured
}

// NewStatus returns a bare status carrying no token.
func NewStatus(s NodeState) Status { return Status{State: s} }

// StatusWithToken returns a SCHEDULED status carrying a token.
func StatusWithToken(tok Token) Status { return Status{State: StateScheduled, Token: tok} }

// HasToken reports whether this status is SCHEDULED with a captured token.
func (s Status) HasToken() bool { return s.State == StateScheduled && s.Token != nil }
