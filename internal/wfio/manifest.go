package wfio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"weaveflow/internal/graph"
)

// SupportedSchemaVersion is the only manifest schema version this package
// accepts, mirroring the teacher's internal/graph.SupportedSchemaVersion
// single-version strictness.
const SupportedSchemaVersion = "1.0.0"

// ErrManifest is wrapped by every manifest parse or build failure.
var ErrManifest = errors.New("wfio: invalid manifest")

// Document is the on-disk manifest format weaverctl loads graphs from,
// adapted from the teacher's internal/graph.Document/Node/Edge shape
// (schema_version + graph.nodes/edges + metadata) but with each node naming
// the CommandTask it runs directly, since this module's graph.Task is an
// opaque interface rather than the teacher's type-tagged Inputs map.
type Document struct {
	SchemaVersion string   `json:"schema_version"`
	Graph         GraphDoc `json:"graph"`
	Metadata      Metadata `json:"metadata"`
}

// GraphDoc holds the manifest's nodes and edges.
type GraphDoc struct {
	Nodes []NodeDoc `json:"nodes"`
	Edges []EdgeDoc `json:"edges"`
}

// NodeDoc describes one CommandTask node. Command being empty marks a
// structure node (graph.NodeBuilder.Task == nil), matching spec §3.1's
// "grouping/barrier node with no attached task."
type NodeDoc struct {
	ID      string   `json:"id"`
	Command string   `json:"command,omitempty"`
	Args    []string `json:"args,omitempty"`
	Dir     string   `json:"dir,omitempty"`
	Outputs []string `json:"outputs,omitempty"`
}

// EdgeDoc declares that From must complete before To may start (To depends
// on From), matching the teacher's Edge{From,To} direction.
type EdgeDoc struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Metadata is carried through for diagnostics but has no effect on the
// constructed graph, same role as the teacher's Metadata.
type Metadata struct {
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Labels      []string `json:"labels,omitempty"`
}

// ParseManifest decodes and minimally validates a Document from r, rejecting
// unknown fields the same way the teacher's graph.Parse does via
// json.Decoder.DisallowUnknownFields.
func ParseManifest(r io.Reader) (*Document, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrManifest, err)
	}
	if doc.SchemaVersion != SupportedSchemaVersion {
		return nil, fmt.Errorf("%w: unsupported schema_version %q, expected %q", ErrManifest, doc.SchemaVersion, SupportedSchemaVersion)
	}
	for i, n := range doc.Graph.Nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("%w: graph.nodes[%d].id is required", ErrManifest, i)
		}
	}
	for i, e := range doc.Graph.Edges {
		if e.From == "" || e.To == "" {
			return nil, fmt.Errorf("%w: graph.edges[%d] requires both from and to", ErrManifest, i)
		}
	}
	return &doc, nil
}

// BuildGraph constructs a *graph.Graph from doc, wiring each NodeDoc with a
// Command into a CommandTask whose FileOutputs resolve relative Outputs
// paths under dir (typically the invocation's workdir), and leaving
// command-less nodes as structure nodes.
func BuildGraph(doc *Document, dir string) (*graph.Graph, error) {
	builders := make(map[string]*graph.NodeBuilder, len(doc.Graph.Nodes))
	order := make([]string, 0, len(doc.Graph.Nodes))
	for _, n := range doc.Graph.Nodes {
		b := &graph.NodeBuilder{Key: n.ID}
		if n.Command != "" {
			fileOutputs := make([]FileOutput, len(n.Outputs))
			for i, p := range n.Outputs {
				if !filepath.IsAbs(p) {
					p = filepath.Join(dir, p)
				}
				fileOutputs[i] = FileOutput{Path: p}
			}
			taskDir := n.Dir
			if taskDir == "" {
				taskDir = dir
			} else if !filepath.IsAbs(taskDir) {
				taskDir = filepath.Join(dir, taskDir)
			}
			b.Task = CommandTask{
				Key:         n.ID,
				Command:     n.Command,
				Args:        n.Args,
				Dir:         taskDir,
				FileOutputs: fileOutputs,
			}
		}
		builders[n.ID] = b
		order = append(order, n.ID)
	}

	for _, e := range doc.Graph.Edges {
		to, ok := builders[e.To]
		if !ok {
			return nil, fmt.Errorf("%w: edge references unknown node %q", ErrManifest, e.To)
		}
		from, ok := builders[e.From]
		if !ok {
			return nil, fmt.Errorf("%w: edge references unknown node %q", ErrManifest, e.From)
		}
		to.Dependencies = append(to.Dependencies, from)
	}

	list := make([]*graph.NodeBuilder, 0, len(order))
	for _, id := range order {
		list = append(list, builders[id])
	}
	return graph.New(list...)
}
