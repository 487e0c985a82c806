package pool

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weaveflow/internal/graph"
)

type recordingCallback struct {
	mu      sync.Mutex
	success bool
	failed  bool
	cause   error
	done    chan struct{}
}

func newRecordingCallback() *recordingCallback {
	return &recordingCallback{done: make(chan struct{})}
}

func (c *recordingCallback) ReportSuccess() {
	c.mu.Lock()
	c.success = true
	c.mu.Unlock()
	close(c.done)
}
func (c *recordingCallback) ReportFailure() {
	c.mu.Lock()
	c.failed = true
	c.mu.Unlock()
	close(c.done)
}
func (c *recordingCallback) ReportFailureMsg(string) { c.ReportFailure() }
func (c *recordingCallback) ReportFailureCause(cause error) {
	c.mu.Lock()
	c.failed = true
	c.cause = cause
	c.mu.Unlock()
	close(c.done)
}
func (c *recordingCallback) ReportFailureMsgCause(_ string, cause error) { c.ReportFailureCause(cause) }

type noopTask struct{}

func (noopTask) Outputs() []graph.Output { return nil }

func TestScheduler_SubmitRunsAndReportsSuccess(t *testing.T) {
	s := New(2, func(ctx context.Context, task graph.Task) error { return nil })
	defer s.Close()

	cb := newRecordingCallback()
	token, err := s.Submit(context.Background(), noopTask{}, cb)
	require.NoError(t, err)
	assert.NotNil(t, token)

	select {
	case <-cb.done:
	case <-time.After(time.Second):
		t.Fatal("callback never fired")
	}
	assert.True(t, cb.success)
}

func TestScheduler_RunnerErrorReportsFailure(t *testing.T) {
	boom := errors.New("boom")
	s := New(1, func(ctx context.Context, task graph.Task) error { return boom })
	defer s.Close()

	cb := newRecordingCallback()
	_, err := s.Submit(context.Background(), noopTask{}, cb)
	require.NoError(t, err)

	<-cb.done
	assert.True(t, cb.failed)
	assert.ErrorIs(t, cb.cause, boom)
}

func TestScheduler_RegisterCallbackUnknownTokenFails(t *testing.T) {
	s := New(1, func(ctx context.Context, task graph.Task) error { return nil })
	defer s.Close()

	err := s.RegisterCallback("not-a-real-token", newRecordingCallback())
	assert.Error(t, err)
}

func TestScheduler_RegisterCallbackRedirectsInflightTask(t *testing.T) {
	release := make(chan struct{})
	s := New(1, func(ctx context.Context, task graph.Task) error {
		<-release
		return nil
	})
	defer s.Close()

	original := newRecordingCallback()
	token, err := s.Submit(context.Background(), noopTask{}, original)
	require.NoError(t, err)

	replacement := newRecordingCallback()
	require.NoError(t, s.RegisterCallback(token, replacement))

	close(release)

	select {
	case <-replacement.done:
	case <-time.After(time.Second):
		t.Fatal("replacement callback never fired")
	}
	assert.True(t, replacement.success)

	select {
	case <-original.done:
		t.Fatal("original callback fired after being replaced")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestScheduler_SubmitAfterCloseFails(t *testing.T) {
	s := New(1, func(ctx context.Context, task graph.Task) error { return nil })
	require.NoError(t, s.Close())

	_, err := s.Submit(context.Background(), noopTask{}, newRecordingCallback())
	assert.Error(t, err)
}
