package pool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"weaveflow/internal/execution"
	"weaveflow/internal/graph"
)

// Runner actually executes a task; it is the caller-supplied glue between
// an opaque graph.Task and whatever concrete work it represents (e.g. the
// filesystem tasks in internal/wfio). A non-nil error is reported to the
// driver as a task failure.
type Runner func(ctx context.Context, task graph.Task) error

// Metrics receives scheduler events. nopMetrics, the default, discards them; a
// Prometheus-backed implementation lives in internal/telemetry so that this
// package does not itself depend on the metrics library.
type Metrics interface {
	TaskStarted()
	TaskFinished(success bool, elapsed time.Duration)
	QueueDepth(n int)
}

type nopMetrics struct{}

func (nopMetrics) TaskStarted()                          {}
func (nopMetrics) TaskFinished(bool, time.Duration)       {}
func (nopMetrics) QueueDepth(int)                         {}

type workItem struct {
	token string
	task  graph.Task
}

// Scheduler is a bounded worker-pool execution.TaskScheduler. Workers are
// started once at construction and drained on Close; Submit enqueues work
// onto a buffered channel rather than spawning a goroutine per task,
// grounded in the teacher's dag.Executor.RunParallel workCh/doneCh pattern
// generalized from depth-staged batches to on-demand submission.
type Scheduler struct {
	runner  Runner
	workCh  chan workItem
	eg      *errgroup.Group
	egCtx   context.Context
	metrics Metrics

	mu       sync.Mutex
	inflight map[string]execution.TaskCompletionCallback
	closed   bool
}

// Option configures a Scheduler at construction time.
type Option func(*Scheduler)

// WithMetrics installs a Metrics sink. A nil metrics value is ignored.
func WithMetrics(m Metrics) Option {
	return func(s *Scheduler) {
		if m != nil {
			s.metrics = m
		}
	}
}

// New starts a Scheduler with concurrency workers, each executing tasks via
// runner.
func New(concurrency int, runner Runner, opts ...Option) *Scheduler {
	if concurrency <= 0 {
		concurrency = 1
	}
	eg, ctx := errgroup.WithContext(context.Background())
	s := &Scheduler{
		runner:   runner,
		workCh:   make(chan workItem, concurrency*4),
		eg:       eg,
		egCtx:    ctx,
		metrics:  nopMetrics{},
		inflight: make(map[string]execution.TaskCompletionCallback),
	}
	for _, opt := range opts {
		opt(s)
	}

	for i := 0; i < concurrency; i++ {
		eg.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case w, ok := <-s.workCh:
					if !ok {
						return nil
					}
					s.execute(w)
				}
			}
		})
	}
	return s
}

func (s *Scheduler) execute(w workItem) {
	s.metrics.TaskStarted()
	start := time.Now()
	err := s.runner(s.egCtx, w.task)
	s.metrics.TaskFinished(err == nil, time.Since(start))

	// Read the callback current at completion time, not the one captured at
	// Submit: RegisterCallback may have replaced it (e.g. Thaw re-attaching
	// a callback to a token that survived a snapshot/restore cycle).
	s.mu.Lock()
	cb, stillInflight := s.inflight[w.token]
	delete(s.inflight, w.token)
	s.metrics.QueueDepth(len(s.workCh))
	s.mu.Unlock()

	if !stillInflight {
		return
	}
	if err != nil {
		cb.ReportFailureCause(err)
		return
	}
	cb.ReportSuccess()
}

// Submit implements execution.TaskScheduler.
func (s *Scheduler) Submit(ctx context.Context, task graph.Task, cb execution.TaskCompletionCallback) (graph.Token, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, fmt.Errorf("pool: scheduler is closed")
	}
	token := uuid.New().String()
	s.inflight[token] = cb
	s.metrics.QueueDepth(len(s.workCh) + 1)
	s.mu.Unlock()

	select {
	case s.workCh <- workItem{token: token, task: task}:
		return token, nil
	case <-ctx.Done():
		s.mu.Lock()
		delete(s.inflight, token)
		s.mu.Unlock()
		return nil, ctx.Err()
	}
}

// RegisterCallback implements execution.TaskScheduler for tokens whose task
// has not yet finished. A token is forgotten once its task finishes, so a
// token for an already-completed task fails with execution.ErrInvalidToken;
// the completed result is not replayed to the new callback.
func (s *Scheduler) RegisterCallback(token graph.Token, cb execution.TaskCompletionCallback) error {
	tok, ok := token.(string)
	if !ok {
		return execution.ErrInvalidToken
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.inflight[tok]; !ok {
		return execution.ErrInvalidToken
	}
	s.inflight[tok] = cb
	return nil
}

// Close stops accepting new work, drains in-flight tasks, and waits for
// every worker to exit.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.workCh)
	return s.eg.Wait()
}
