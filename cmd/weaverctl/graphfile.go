package main

import (
	"fmt"
	"os"

	"weaveflow/internal/graph"
	"weaveflow/internal/wfio"
)

// loadGraph reads and builds the graph described by the manifest at path,
// resolving relative CommandTask outputs and working directories under
// workdir.
func loadGraph(path, workdir string) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest %q: %w", path, err)
	}
	defer f.Close()

	doc, err := wfio.ParseManifest(f)
	if err != nil {
		return nil, err
	}
	return wfio.BuildGraph(doc, workdir)
}
