package freshness

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weaveflow/internal/graph"
)

// memOutput is an in-memory Output test double: a pointer to a timestamp
// slot that Delete() clears to "missing".
type memOutput struct {
	at      time.Time
	exists  bool
	deleted bool
	failErr error
}

func (o *memOutput) Timestamp() (time.Time, bool, error) {
	if !o.exists {
		return time.Time{}, false, nil
	}
	return o.at, true, nil
}

func (o *memOutput) Delete() error {
	if o.failErr != nil {
		return o.failErr
	}
	o.deleted = true
	o.exists = false
	return nil
}

type memTask struct{ outputs []graph.Output }

func (t memTask) Outputs() []graph.Output { return t.outputs }

func newOutput(at time.Time) *memOutput { return &memOutput{at: at, exists: true} }
func missingOutput() *memOutput         { return &memOutput{exists: false} }

func taskNode(key string, out *memOutput, deps ...*graph.NodeBuilder) *graph.NodeBuilder {
	return &graph.NodeBuilder{Key: key, Task: memTask{outputs: []graph.Output{out}}, Dependencies: deps}
}

func TestAnalyze_AllFreshNothingInvalid(t *testing.T) {
	t0 := time.Unix(100, 0)
	t1 := time.Unix(200, 0)

	a := taskNode("a", newOutput(t0))
	b := taskNode("b", newOutput(t1), a)

	g, err := graph.New(a, b)
	require.NoError(t, err)

	invalid, _, err := Analyze(g.AsTarget())
	require.NoError(t, err)
	assert.Empty(t, invalid)
}

func TestAnalyze_StaleDependentIsInvalid(t *testing.T) {
	tOld := time.Unix(100, 0)
	tNew := time.Unix(500, 0)

	a := taskNode("a", newOutput(tNew)) // a is newer than b
	b := taskNode("b", newOutput(tOld), a)

	g, err := graph.New(a, b)
	require.NoError(t, err)

	invalid, timestamps, err := Analyze(g.AsTarget())
	require.NoError(t, err)
	assert.True(t, invalid.Contains("b"))
	assert.False(t, invalid.Contains("a"))

	// b's output timestamp is overwritten to "missing" once invalidated.
	require.Len(t, timestamps["b"], 1)
	assert.False(t, timestamps["b"][0].Exists)
}

func TestAnalyze_MissingOutputForcesInvalidAndPropagates(t *testing.T) {
	a := taskNode("a", missingOutput())
	b := taskNode("b", newOutput(time.Unix(1, 0)), a)
	c := taskNode("c", newOutput(time.Unix(1, 0)), b)

	g, err := graph.New(a, b, c)
	require.NoError(t, err)

	invalid, _, err := Analyze(g.AsTarget())
	require.NoError(t, err)
	assert.True(t, invalid.Contains("a"))
	assert.True(t, invalid.Contains("b"), "invalidation must propagate to dependents")
	assert.True(t, invalid.Contains("c"), "invalidation must propagate transitively")
}

func TestAnalyze_StructureNodeDoesNotBlockPropagation(t *testing.T) {
	a := taskNode("a", missingOutput())
	hub := &graph.NodeBuilder{Key: "hub", Dependencies: []*graph.NodeBuilder{a}}
	c := &graph.NodeBuilder{Key: "c", Task: memTask{outputs: []graph.Output{newOutput(time.Unix(1, 0))}}, Dependencies: []*graph.NodeBuilder{hub}}

	g, err := graph.New(a, hub, c)
	require.NoError(t, err)

	invalid, _, err := Analyze(g.AsTarget())
	require.NoError(t, err)
	assert.True(t, invalid.Contains("c"), "invalidation must flow through a structure node")
	assert.False(t, invalid.Contains("hub"), "structure nodes have no task and are never marked invalid")
}

func TestAnalyze_RestrictedToTarget(t *testing.T) {
	tOld := time.Unix(100, 0)
	a := taskNode("a", missingOutput())
	b := taskNode("b", newOutput(tOld), a)

	g, err := graph.New(a, b)
	require.NoError(t, err)

	target, err := graph.NewTarget(g, "b")
	require.NoError(t, err)

	invalid, _, err := Analyze(target)
	require.NoError(t, err)
	// a is outside the target, so its invalidity cannot be observed; b has
	// no in-target dependencies and is therefore not forced invalid.
	assert.Empty(t, invalid)
}

func TestRemoveOutputs_AggregatesErrorsAndContinues(t *testing.T) {
	failing := &memOutput{exists: true, at: time.Unix(1, 0), failErr: errors.New("disk full")}
	ok := newOutput(time.Unix(1, 0))

	a := taskNode("a", failing)
	b := taskNode("b", ok)
	g, err := graph.New(a, b)
	require.NoError(t, err)

	err = RemoveOutputs(g.AsTarget().Nodes(), ReasonExecutionFailed, nil)
	require.Error(t, err)
	assert.True(t, ok.deleted, "the non-failing node's output must still be deleted")
	assert.False(t, failing.deleted)
}

func TestRemoveOutputs_FilterCanPreserveOutputs(t *testing.T) {
	out := newOutput(time.Unix(1, 0))
	a := taskNode("a", out)
	g, err := graph.New(a)
	require.NoError(t, err)

	filter := RemovalFilterFunc(func(outputs map[string][]graph.Output, reason Reason) {
		delete(outputs, "a")
	})

	err = RemoveOutputs(g.AsTarget().Nodes(), ReasonRemovalRequested, filter)
	require.NoError(t, err)
	assert.False(t, out.deleted, "filtered-out node must not have its output deleted")
}

func TestRemoveInvalidOutput_DeletesOnlyInvalidNodes(t *testing.T) {
	a := taskNode("a", missingOutput())
	freshOut := newOutput(time.Unix(1, 0))
	b := taskNode("b", freshOut) // independent, not stale

	g, err := graph.New(a, b)
	require.NoError(t, err)

	invalid, _, err := RemoveInvalidOutput(g.AsTarget(), nil)
	require.NoError(t, err)
	assert.True(t, invalid.Contains("a"))
	assert.False(t, invalid.Contains("b"))
	assert.False(t, freshOut.deleted)
}
