package pluginengine

import (
	"context"
	"errors"
	"testing"

	"weaveflow/internal/execution"
	"weaveflow/internal/graph"
)

type recordingPlugin struct {
	manifest PluginManifest
	calls    *[]string

	panicBeforeRun  bool
	panicBeforeNode bool

	errBeforeRun  error
	errAfterRun   error
	errBeforeNode error
	errAfterNode  error
}

func (p *recordingPlugin) Manifest() PluginManifest { return p.manifest }

func (p *recordingPlugin) BeforeRun(context.Context) error {
	*p.calls = append(*p.calls, p.manifest.PluginID+":BeforeRun")
	if p.panicBeforeRun {
		panic("boom")
	}
	return p.errBeforeRun
}

func (p *recordingPlugin) AfterRun(context.Context) error {
	*p.calls = append(*p.calls, p.manifest.PluginID+":AfterRun")
	return p.errAfterRun
}

func (p *recordingPlugin) BeforeNode(_ context.Context, taskID string) error {
	*p.calls = append(*p.calls, p.manifest.PluginID+":BeforeNode:"+taskID)
	if p.panicBeforeNode {
		panic("boom")
	}
	return p.errBeforeNode
}

func (p *recordingPlugin) AfterNode(_ context.Context, taskID string) error {
	*p.calls = append(*p.calls, p.manifest.PluginID+":AfterNode:"+taskID)
	return p.errAfterNode
}

func TestHookEngine_DeterministicOrderByPluginID(t *testing.T) {
	t.Parallel()

	var calls []string
	pB := &recordingPlugin{
		manifest: PluginManifest{PluginID: "b", Version: "0.1.0", Hooks: []string{"BeforeRun"}},
		calls:    &calls,
	}
	pA := &recordingPlugin{
		manifest: PluginManifest{PluginID: "a", Version: "0.1.0", Hooks: []string{"BeforeRun"}},
		calls:    &calls,
	}

	eng, err := NewHookEngine([]RuntimePlugin{pB, pA}, nil)
	if err != nil {
		t.Fatalf("NewHookEngine error: %v", err)
	}
	eng.BeforeRun(context.Background())

	if len(calls) != 2 {
		t.Fatalf("calls = %#v, want 2", calls)
	}
	if calls[0] != "a:BeforeRun" || calls[1] != "b:BeforeRun" {
		t.Fatalf("calls = %#v, want [a:BeforeRun b:BeforeRun]", calls)
	}
}

// noopTask satisfies graph.Task with no outputs, for driving a real
// execution.Execution through the HookEngine.
type noopTask struct{}

func (noopTask) Outputs() []graph.Output { return nil }

type immediateScheduler struct{}

func (immediateScheduler) Submit(_ context.Context, _ graph.Task, cb execution.TaskCompletionCallback) (graph.Token, error) {
	cb.ReportSuccess()
	return "tok", nil
}

func (immediateScheduler) RegisterCallback(graph.Token, execution.TaskCompletionCallback) error {
	return execution.ErrInvalidToken
}

func buildTwoNodeGraph(t *testing.T) *graph.Graph {
	t.Helper()
	a := &graph.NodeBuilder{Key: "A", Task: noopTask{}}
	b := &graph.NodeBuilder{Key: "B", Task: noopTask{}}
	g, err := graph.New(a, b)
	if err != nil {
		t.Fatalf("graph.New: %v", err)
	}
	return g
}

func TestExecution_RunInvokesHookPointsInOrder(t *testing.T) {
	t.Parallel()

	g := buildTwoNodeGraph(t)
	target := g.AsTarget()

	var calls []string
	p := &recordingPlugin{
		manifest: PluginManifest{PluginID: "p", Version: "0.1.0", Hooks: []string{"BeforeRun", "AfterRun", "BeforeNode", "AfterNode"}},
		calls:    &calls,
	}
	eng, err := NewHookEngine([]RuntimePlugin{p}, nil)
	if err != nil {
		t.Fatalf("NewHookEngine error: %v", err)
	}

	exec, err := execution.New(target, immediateScheduler{}, execution.WithLifecycleHooks(eng))
	if err != nil {
		t.Fatalf("execution.New: %v", err)
	}

	if err := exec.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(calls) != 6 {
		t.Fatalf("calls = %#v, want 6 entries", calls)
	}
	if calls[0] != "p:BeforeRun" || calls[len(calls)-1] != "p:AfterRun" {
		t.Fatalf("calls = %#v, want BeforeRun first and AfterRun last", calls)
	}
}

func TestExecution_HookPanicIsRecorded(t *testing.T) {
	t.Parallel()

	g := buildTwoNodeGraph(t)
	target := g.AsTarget()

	var calls []string
	p := &recordingPlugin{
		manifest:        PluginManifest{PluginID: "p", Version: "0.1.0", Hooks: []string{"BeforeNode"}},
		calls:           &calls,
		panicBeforeNode: true,
	}
	eng, err := NewHookEngine([]RuntimePlugin{p}, nil)
	if err != nil {
		t.Fatalf("NewHookEngine error: %v", err)
	}

	exec, err := execution.New(target, immediateScheduler{}, execution.WithLifecycleHooks(eng))
	if err != nil {
		t.Fatalf("execution.New: %v", err)
	}
	if err := exec.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(eng.Errors()) == 0 {
		t.Fatalf("expected plugin panic to be recorded as error")
	}
}

func TestExecution_HookErrorDoesNotCrashEngine(t *testing.T) {
	t.Parallel()

	g := buildTwoNodeGraph(t)
	target := g.AsTarget()

	var calls []string
	p := &recordingPlugin{
		manifest:    PluginManifest{PluginID: "p", Version: "0.1.0", Hooks: []string{"AfterRun"}},
		calls:       &calls,
		errAfterRun: errors.New("hook failed"),
	}
	eng, err := NewHookEngine([]RuntimePlugin{p}, nil)
	if err != nil {
		t.Fatalf("NewHookEngine error: %v", err)
	}

	exec, err := execution.New(target, immediateScheduler{}, execution.WithLifecycleHooks(eng))
	if err != nil {
		t.Fatalf("execution.New: %v", err)
	}
	if err := exec.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := eng.Errors(); len(got) != 1 {
		t.Fatalf("Errors() = %#v, want 1 error", got)
	}
}
