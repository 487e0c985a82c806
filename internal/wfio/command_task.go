package wfio

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/pkg/errors"

	"weaveflow/internal/graph"
)

// CommandTask runs an external command and declares a fixed set of
// FileOutputs it is expected to produce. It is the reference Task
// implementation consumed by a pool.Runner.
type CommandTask struct {
	Key         string
	Command     string
	Args        []string
	Dir         string
	FileOutputs []FileOutput
}

func (t CommandTask) Outputs() []graph.Output {
	out := make([]graph.Output, len(t.FileOutputs))
	for i, f := range t.FileOutputs {
		out[i] = f
	}
	return out
}

// Run executes the command, returning an error that wraps its stderr on
// non-zero exit. It is the Runner passed to pool.New for a scheduler whose
// tasks are all CommandTasks.
//
// Failures are wrapped with github.com/pkg/errors rather than fmt.Errorf:
// this error crosses the scheduler's worker goroutine into the driver's
// completion queue as a TaskFailure cause, and a stack trace captured at
// the point of failure is the only way to tell which worker goroutine ran
// the command once it surfaces on the other side of that boundary.
func Run(ctx context.Context, task graph.Task) error {
	ct, ok := task.(CommandTask)
	if !ok {
		return fmt.Errorf("wfio: Run does not support task type %T", task)
	}

	cmd := exec.CommandContext(ctx, ct.Command, ct.Args...)
	cmd.Dir = ct.Dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "wfio: command %q for task %q failed: %s", ct.Command, ct.Key, stderr.String())
	}
	return nil
}
