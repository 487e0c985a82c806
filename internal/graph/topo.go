package graph

import "sort"

// visitState tracks iterative DFS progress for topologicalSort.
type visitState int

const (
	unvisited visitState = iota
	visiting
	visited
)

// topologicalSort returns nodes in dependency-first order (every node
// appears after all of its dependencies) or a ConstructionError of kind
// "cycle" if the dependency relation is not acyclic. The traversal is
// iterative with an explicit stack so that pathologically deep graphs do
// not exhaust the call stack, and ties are broken by key so the result is
// deterministic across runs.
func topologicalSort(nodes map[string]*Node) ([]*Node, error) {
	keys := make([]string, 0, len(nodes))
	for k := range nodes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	state := make(map[*Node]visitState, len(nodes))
	order := make([]*Node, 0, len(nodes))

	type frame struct {
		n      *Node
		depIdx int
		deps   []*Node
	}

	for _, k := range keys {
		root := nodes[k]
		if state[root] != unvisited {
			continue
		}

		stack := []*frame{{n: root, deps: root.Dependencies()}}
		state[root] = visiting

		for len(stack) > 0 {
			top := stack[len(stack)-1]

			if top.depIdx < len(top.deps) {
				dep := top.deps[top.depIdx]
				top.depIdx++

				switch state[dep] {
				case unvisited:
					state[dep] = visiting
					stack = append(stack, &frame{n: dep, deps: dep.Dependencies()})
				case visiting:
					return nil, newConstructionError("cycle", "graph contains a cycle involving node %q", dep.key)
				case visited:
					// already emitted
				}
				continue
			}

			// All dependencies processed: emit this node.
			state[top.n] = visited
			order = append(order, top.n)
			stack = stack[:len(stack)-1]
		}
	}

	return order, nil
}
