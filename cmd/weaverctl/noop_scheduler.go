package main

import (
	"context"
	"fmt"

	"weaveflow/internal/execution"
	"weaveflow/internal/graph"
)

// noSubmitScheduler is a TaskScheduler that is never actually asked to run
// anything, used by `freeze` to construct an Execution purely to compute
// its initial status map without dispatching.
type noSubmitScheduler struct{}

func (noSubmitScheduler) Submit(context.Context, graph.Task, execution.TaskCompletionCallback) (graph.Token, error) {
	return nil, fmt.Errorf("weaverctl: freeze does not dispatch tasks")
}

func (noSubmitScheduler) RegisterCallback(graph.Token, execution.TaskCompletionCallback) error {
	return execution.ErrInvalidToken
}
