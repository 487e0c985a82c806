package graph

// Target is a non-empty subset of a Graph's nodes, used to scope execution
// and output operations. The Graph itself is a Target equal to its entire
// node set (see Graph.AsTarget).
type Target struct {
	parent *Graph
	nodes  map[string]*Node // key -> node, nodes ⊆ parent.nodes
}

// NewTarget builds a Target containing exactly the named nodes of g.
func NewTarget(g *Graph, keys ...string) (*Target, error) {
	if g == nil {
		return nil, newConstructionError("empty_target", "nil graph")
	}
	if len(keys) == 0 {
		return nil, newConstructionError("empty_target", "target must be non-empty")
	}
	nodes := make(map[string]*Node, len(keys))
	for _, k := range keys {
		n, ok := g.nodes[k]
		if !ok {
			return nil, newConstructionError("not_in_target", "key %q is not a member of the parent graph", k)
		}
		nodes[k] = n
	}
	return &Target{parent: g, nodes: nodes}, nil
}

// Graph returns the Target's parent Graph.
func (t *Target) Graph() *Graph { return t.parent }

// Len returns the number of nodes in the Target.
func (t *Target) Len() int { return len(t.nodes) }

// Contains reports whether the Target includes the given node.
func (t *Target) Contains(n *Node) bool {
	existing, ok := t.nodes[n.key]
	return ok && existing == n
}

// ContainsKey reports whether the Target includes a node with the given key.
func (t *Target) ContainsKey(key string) bool {
	_, ok := t.nodes[key]
	return ok
}

// Node looks up a node by key, restricted to Target membership.
func (t *Target) Node(key string) (*Node, bool) {
	n, ok := t.nodes[key]
	return n, ok
}

// Nodes returns the Target's member nodes, in topological order.
func (t *Target) Nodes() []*Node {
	out := make([]*Node, 0, len(t.nodes))
	for _, n := range t.parent.order {
		if _, ok := t.nodes[n.key]; ok {
			out = append(out, n)
		}
	}
	return out
}

// Keys returns the Target's member keys, in topological order.
func (t *Target) Keys() []string {
	nodes := t.Nodes()
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.key
	}
	return out
}

func (t *Target) resolveKeys(keys []string) ([]*Node, error) {
	out := make([]*Node, 0, len(keys))
	for _, k := range keys {
		n, ok := t.nodes[k]
		if !ok {
			return nil, newConstructionError("not_in_target", "key %q is not a member of this target", k)
		}
		out = append(out, n)
	}
	return out, nil
}

// equalNodeSet reports whether t and candidate contain exactly the same
// nodes, used for the "return the parent Target itself" identity
// optimization in StartingFrom/StoppingAfter.
func (t *Target) equalNodeSet(candidate map[string]*Node) bool {
	if len(t.nodes) != len(candidate) {
		return false
	}
	for k := range t.nodes {
		if _, ok := candidate[k]; !ok {
			return false
		}
	}
	return true
}

// StartingFrom returns the forward closure of the named nodes over
// dependents, restricted to this Target: every node reachable from the
// seed set by following "is a dependent of" edges that stay inside the
// Target. Fails if any seed key is not a member of this Target.
func (t *Target) StartingFrom(keys ...string) (*Target, error) {
	seeds, err := t.resolveKeys(keys)
	if err != nil {
		return nil, err
	}
	closure := t.closure(seeds, func(n *Node) []*Node { return n.Dependents() })
	if t.equalNodeSet(closure) {
		return t, nil
	}
	return &Target{parent: t.parent, nodes: closure}, nil
}

// StoppingAfter returns the reverse closure of the named nodes over
// dependencies, restricted to this Target. Fails if any seed key is not a
// member of this Target.
func (t *Target) StoppingAfter(keys ...string) (*Target, error) {
	seeds, err := t.resolveKeys(keys)
	if err != nil {
		return nil, err
	}
	closure := t.closure(seeds, func(n *Node) []*Node { return n.Dependencies() })
	if t.equalNodeSet(closure) {
		return t, nil
	}
	return &Target{parent: t.parent, nodes: closure}, nil
}

// closure performs an iterative depth-first traversal from seeds, expanding
// via neighbors(n), restricting the neighbor set to this Target's members
// *before* expanding into them. Restricting before expanding (rather than
// traversing freely and filtering afterward) is semantically required: a
// node just outside the Target must never pull in its own further
// neighbors, even if those happen to lie back inside the Target.
func (t *Target) closure(seeds []*Node, neighbors func(*Node) []*Node) map[string]*Node {
	seen := make(map[string]*Node, len(t.nodes))
	var stack []*Node

	for _, s := range seeds {
		if !t.Contains(s) {
			continue
		}
		if _, ok := seen[s.key]; !ok {
			seen[s.key] = s
			stack = append(stack, s)
		}
	}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, next := range neighbors(n) {
			if !t.Contains(next) {
				continue // not a member of the parent Target: do not cross it
			}
			if _, ok := seen[next.key]; ok {
				continue
			}
			seen[next.key] = next
			stack = append(stack, next)
		}
	}

	return seen
}
