package wfio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `{
  "schema_version": "1.0.0",
  "graph": {
    "nodes": [
      {"id": "compile", "command": "echo", "args": ["building"], "outputs": ["out/bin"]},
      {"id": "group", "command": ""},
      {"id": "test", "command": "echo", "args": ["testing"], "outputs": ["out/report"]}
    ],
    "edges": [
      {"from": "compile", "to": "group"},
      {"from": "group", "to": "test"}
    ]
  },
  "metadata": {"name": "sample"}
}`

func TestParseManifest_Valid(t *testing.T) {
	doc, err := ParseManifest(strings.NewReader(sampleManifest))
	require.NoError(t, err)
	assert.Len(t, doc.Graph.Nodes, 3)
	assert.Equal(t, "sample", doc.Metadata.Name)
}

func TestParseManifest_RejectsUnsupportedSchemaVersion(t *testing.T) {
	body := strings.Replace(sampleManifest, `"1.0.0"`, `"2.0.0"`, 1)
	_, err := ParseManifest(strings.NewReader(body))
	assert.ErrorIs(t, err, ErrManifest)
}

func TestParseManifest_RejectsUnknownField(t *testing.T) {
	body := `{"schema_version":"1.0.0","graph":{"nodes":[],"edges":[]},"metadata":{},"extra":true}`
	_, err := ParseManifest(strings.NewReader(body))
	assert.ErrorIs(t, err, ErrManifest)
}

func TestParseManifest_RejectsMissingNodeID(t *testing.T) {
	body := `{"schema_version":"1.0.0","graph":{"nodes":[{"id":"","command":"echo"}],"edges":[]},"metadata":{}}`
	_, err := ParseManifest(strings.NewReader(body))
	assert.ErrorIs(t, err, ErrManifest)
}

func TestBuildGraph_WiresDependenciesAndStructureNodes(t *testing.T) {
	doc, err := ParseManifest(strings.NewReader(sampleManifest))
	require.NoError(t, err)

	g, err := BuildGraph(doc, t.TempDir())
	require.NoError(t, err)

	compile, ok := g.Node("compile")
	require.True(t, ok)
	group, ok := g.Node("group")
	require.True(t, ok)
	test, ok := g.Node("test")
	require.True(t, ok)

	assert.False(t, compile.IsStructureNode())
	assert.True(t, group.IsStructureNode())
	assert.False(t, test.IsStructureNode())

	assert.Contains(t, group.Dependencies(), compile)
	assert.Contains(t, test.Dependencies(), group)
}

func TestBuildGraph_RejectsEdgeToUnknownNode(t *testing.T) {
	body := `{"schema_version":"1.0.0","graph":{"nodes":[{"id":"a","command":"echo"}],"edges":[{"from":"a","to":"missing"}]},"metadata":{}}`
	doc, err := ParseManifest(strings.NewReader(body))
	require.NoError(t, err)

	_, err = BuildGraph(doc, t.TempDir())
	assert.ErrorIs(t, err, ErrManifest)
}
