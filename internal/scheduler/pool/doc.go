// Package pool provides a bounded worker-pool implementation of
// execution.TaskScheduler, the reference collaborator used by
// cmd/weaverctl. It keeps each submitted callback in an in-flight map keyed
// by token, from Submit until the task finishes, and drops it then. Those
// references are strong and there is no way to unregister a callback early,
// so an execution.Execution with tasks still queued or running stays
// reachable from the Scheduler until they finish.
package pool
