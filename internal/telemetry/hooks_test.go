package telemetry

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"weaveflow/internal/graph"
)

type fakeStatusSource struct {
	statuses map[string]graph.Status
}

func (f fakeStatusSource) Statuses() map[string]graph.Status { return f.statuses }

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestDriverHooks_CountsDispatchAndFinalOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewDriverMetrics(reg)
	source := fakeStatusSource{statuses: map[string]graph.Status{
		"a": graph.NewStatus(graph.StateSucceeded),
		"b": graph.NewStatus(graph.StateSucceeded),
		"c": graph.NewStatus(graph.StateFailed),
		"d": graph.NewStatus(graph.StateIrrelevant),
	}}
	hooks := NewDriverHooks(metrics)
	hooks.Attach(source)

	ctx := context.Background()
	hooks.BeforeRun(ctx)
	hooks.BeforeNode(ctx, "a")
	hooks.AfterNode(ctx, "a")
	hooks.BeforeNode(ctx, "b")
	hooks.AfterNode(ctx, "b")
	hooks.BeforeNode(ctx, "c")
	hooks.AfterNode(ctx, "c")
	hooks.AfterRun(ctx)

	require.Equal(t, float64(3), counterValue(t, metrics.nodesDispatched))
	require.Equal(t, float64(2), counterValue(t, metrics.nodesSucceeded))
	require.Equal(t, float64(1), counterValue(t, metrics.nodesFailed))
}
