package graph

import (
	"fmt"

	"github.com/google/uuid"
)

// NodeBuilder declares one node to be instantiated by New. Key is optional;
// if empty, the Graph assigns a fresh hex identifier unique within the
// Graph. Task is required for a TaskNode builder and must be nil for a
// StructureNode builder. Dependencies reference other builders in the same
// call to New by pointer identity.
type NodeBuilder struct {
	Key          string
	Task         Task
	Dependencies []*NodeBuilder
}

// generatedKeyWidth is the width, in hex digits, of Graph-assigned keys.
const generatedKeyWidth = 8

// nextGeneratedKey returns a fresh hex key that does not collide with used.
// Keys are derived from a random UUID rather than a counter, so keys
// generated for two separately built Graphs are unlikely (though not
// guaranteed) to collide; uniqueness is checked only within used. This
// matches the "fresh hex identifier" language in
// spec §3 without committing to a process-global counter.
func nextGeneratedKey(used map[string]bool) (string, error) {
	for attempt := 0; attempt < 64; attempt++ {
		id := uuid.New()
		candidate := id.String()[:generatedKeyWidth]
		if !used[candidate] {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("graph: exhausted attempts generating a unique key")
}

// New constructs a Graph from builders, performing the five-step
// construction algorithm from spec §4.1:
//
//  1. assign effective keys (explicit or generated)
//  2. instantiate one node per builder, rejecting duplicate keys/identity
//  3. reject dangling dependency references
//  4. wire dependencies and the inverse dependents relation
//  5. topologically sort, rejecting cycles
func New(builders ...*NodeBuilder) (*Graph, error) {
	if len(builders) == 0 {
		return nil, newConstructionError("empty", "graph must have at least one node")
	}

	seenBuilder := make(map[*NodeBuilder]bool, len(builders))
	for _, b := range builders {
		if b == nil {
			return nil, newConstructionError("duplicate_builder", "nil builder")
		}
		if seenBuilder[b] {
			return nil, newConstructionError("duplicate_builder", "builder appears more than once")
		}
		seenBuilder[b] = true
	}

	usedKeys := make(map[string]bool, len(builders))
	for _, b := range builders {
		if b.Key != "" {
			if !ValidKey(b.Key) {
				return nil, newConstructionError("invalid_key", "key %q does not match the required format", b.Key)
			}
			if usedKeys[b.Key] {
				return nil, newConstructionError("duplicate_key", "duplicate key %q", b.Key)
			}
			usedKeys[b.Key] = true
		}
	}

	effectiveKey := make(map[*NodeBuilder]string, len(builders))
	for _, b := range builders {
		if b.Key != "" {
			effectiveKey[b] = b.Key
			continue
		}
		key, err := nextGeneratedKey(usedKeys)
		if err != nil {
			return nil, err
		}
		usedKeys[key] = true
		effectiveKey[b] = key
	}

	nodes := make(map[string]*Node, len(builders))
	nodeByBuilder := make(map[*NodeBuilder]*Node, len(builders))
	for _, b := range builders {
		n := &Node{
			key:          effectiveKey[b],
			task:         b.Task,
			dependencies: newNodeSet(),
			dependents:   newNodeSet(),
		}
		nodes[n.key] = n
		nodeByBuilder[b] = n
	}

	for _, b := range builders {
		n := nodeByBuilder[b]
		for _, depBuilder := range b.Dependencies {
			dep, ok := nodeByBuilder[depBuilder]
			if !ok {
				return nil, newConstructionError("missing_dependency", "node %q references a dependency builder not present in this graph", n.key)
			}
			n.dependencies.add(dep)
			dep.dependents.add(n)
		}
	}

	order, err := topologicalSort(nodes)
	if err != nil {
		return nil, err
	}
	for i, n := range order {
		n.index = i
	}

	g := &Graph{
		nodes: nodes,
		order: order,
	}
	return g, nil
}
