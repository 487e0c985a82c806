package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"weaveflow/internal/graph"
)

// nodeShape is the structural, Task-free description of one node, used
// only to compute Digest. Field order does not affect the digest: the
// slice of nodeShapes is sorted by Key before marshaling and Dependencies
// is sorted too, mirroring the teacher's graph.ComputeHash normalization
// discipline (stable across formatting/ordering, sensitive to content).
type nodeShape struct {
	Key             string   `json:"key"`
	IsStructureNode bool     `json:"is_structure_node"`
	Dependencies    []string `json:"dependencies"`
}

// Digest computes a stable SHA-256 hex digest of a Graph's structural shape
// (keys, edges, node kind) — never its Task payloads, which are opaque.
func Digest(g *graph.Graph) (string, error) {
	keys := g.Keys()
	shapes := make([]nodeShape, 0, len(keys))
	for _, k := range keys {
		n, ok := g.Node(k)
		if !ok {
			continue
		}
		deps := n.Dependencies()
		depKeys := make([]string, len(deps))
		for i, d := range deps {
			depKeys[i] = d.Key()
		}
		sort.Strings(depKeys)
		shapes = append(shapes, nodeShape{
			Key:             n.Key(),
			IsStructureNode: n.IsStructureNode(),
			Dependencies:    depKeys,
		})
	}
	sort.Slice(shapes, func(i, j int) bool { return shapes[i].Key < shapes[j].Key })

	data, err := json.Marshal(shapes)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
