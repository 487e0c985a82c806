// Package telemetry instruments internal/scheduler/pool and the
// execution driver with github.com/prometheus/client_golang, grounded in
// 88lin-divinesense's Prometheus usage (ai/metrics/prometheus_test.go and
// its go.mod).
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SchedulerMetrics implements pool.Metrics on top of Prometheus
// collectors. Register it with a prometheus.Registerer before passing it
// to pool.WithMetrics.
type SchedulerMetrics struct {
	tasksStarted  prometheus.Counter
	tasksFinished *prometheus.CounterVec
	taskDuration  prometheus.Histogram
	queueDepth    prometheus.Gauge
}

// NewSchedulerMetrics creates and registers the scheduler's collectors
// against reg.
func NewSchedulerMetrics(reg prometheus.Registerer) *SchedulerMetrics {
	m := &SchedulerMetrics{
		tasksStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weaveflow",
			Subsystem: "scheduler",
			Name:      "tasks_started_total",
			Help:      "Total number of tasks started by the worker pool.",
		}),
		tasksFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weaveflow",
			Subsystem: "scheduler",
			Name:      "tasks_finished_total",
			Help:      "Total number of tasks finished by the worker pool, by outcome.",
		}, []string{"outcome"}),
		taskDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weaveflow",
			Subsystem: "scheduler",
			Name:      "task_duration_seconds",
			Help:      "Task execution duration.",
			Buckets:   prometheus.DefBuckets,
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weaveflow",
			Subsystem: "scheduler",
			Name:      "queue_depth",
			Help:      "Number of tasks waiting in the worker pool's queue.",
		}),
	}
	reg.MustRegister(m.tasksStarted, m.tasksFinished, m.taskDuration, m.queueDepth)
	return m
}

func (m *SchedulerMetrics) TaskStarted() { m.tasksStarted.Inc() }

func (m *SchedulerMetrics) TaskFinished(success bool, elapsed time.Duration) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.tasksFinished.WithLabelValues(outcome).Inc()
	m.taskDuration.Observe(elapsed.Seconds())
}

func (m *SchedulerMetrics) QueueDepth(n int) { m.queueDepth.Set(float64(n)) }

// DriverMetrics instruments the execution driver via its LifecycleHooks
// boundary (see execution.LifecycleHooks), counting node dispatch and
// completion outcomes.
type DriverMetrics struct {
	nodesDispatched prometheus.Counter
	nodesSucceeded  prometheus.Counter
	nodesFailed     prometheus.Counter
}

// NewDriverMetrics creates and registers the driver's collectors against
// reg.
func NewDriverMetrics(reg prometheus.Registerer) *DriverMetrics {
	m := &DriverMetrics{
		nodesDispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weaveflow",
			Subsystem: "execution",
			Name:      "nodes_dispatched_total",
			Help:      "Total number of nodes dispatched to a TaskScheduler.",
		}),
		nodesSucceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weaveflow",
			Subsystem: "execution",
			Name:      "nodes_succeeded_total",
			Help:      "Total number of nodes that reached SUCCEEDED.",
		}),
		nodesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weaveflow",
			Subsystem: "execution",
			Name:      "nodes_failed_total",
			Help:      "Total number of nodes that reached FAILED.",
		}),
	}
	reg.MustRegister(m.nodesDispatched, m.nodesSucceeded, m.nodesFailed)
	return m
}

func (m *DriverMetrics) NodeDispatched() { m.nodesDispatched.Inc() }
func (m *DriverMetrics) NodeSucceeded()  { m.nodesSucceeded.Inc() }
func (m *DriverMetrics) NodeFailed()     { m.nodesFailed.Inc() }
