package freshness

import (
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"weaveflow/internal/graph"
)

// Reason labels why a batch of outputs is being removed.
type Reason string

const (
	ReasonExecutionFailed    Reason = "EXECUTION_FAILED"
	ReasonRemovalRequested   Reason = "REMOVAL_REQUESTED"
	ReasonPredatesDependency Reason = "PREDATES_DEPENDENCY"
)

// RemovalFilter is an optional hook invoked once per removal batch. It may
// delete entries from outputs to preserve them (i.e. prevent their
// deletion); it need not be safe for concurrent use, since RemoveOutputs
// calls it synchronously before any deletion begins.
type RemovalFilter interface {
	Filter(outputs map[string][]graph.Output, reason Reason)
}

// RemovalFilterFunc adapts a function to RemovalFilter.
type RemovalFilterFunc func(outputs map[string][]graph.Output, reason Reason)

func (f RemovalFilterFunc) Filter(outputs map[string][]graph.Output, reason Reason) { f(outputs, reason) }

// RemoveOutputs deletes the outputs of every TaskNode in nodes, labelled
// with reason. If filter is non-nil it is consulted once, before any
// deletion, and may drop nodes/outputs it wants preserved. Deletion errors
// are collected, not short-circuited: a failure deleting one node's output
// must not prevent attempting the rest of the batch.
func RemoveOutputs(nodes []*graph.Node, reason Reason, filter RemovalFilter) error {
	batch := make(map[string][]graph.Output, len(nodes))
	byKey := make(map[string]*graph.Node, len(nodes))
	for _, n := range nodes {
		task := n.Task()
		if task == nil {
			continue
		}
		outs := task.Outputs()
		if len(outs) == 0 {
			continue
		}
		batch[n.Key()] = outs
		byKey[n.Key()] = n
	}

	if filter != nil {
		filter.Filter(batch, reason)
	}

	var eg errgroup.Group
	var mu sync.Mutex
	var combined error

	for key, outs := range batch {
		key, outs := key, outs
		eg.Go(func() error {
			for i, o := range outs {
				if err := o.Delete(); err != nil {
					mu.Lock()
					combined = multierror.Append(combined, fmt.Errorf("freshness: deleting output %d of node %q (%s): %w", i, key, reason, err))
					mu.Unlock()
				}
			}
			return nil
		})
	}
	_ = eg.Wait() // the goroutines themselves never return an error; failures are accumulated in combined

	return combined
}
