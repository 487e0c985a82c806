package execution

import (
	"sync"

	"weaveflow/internal/graph"
)

// completionEvent is what a driverCallback hands to the driver's completion
// queue once a task has reported in.
type completionEvent struct {
	node    *graph.Node
	success bool
	msg     string
	cause   error
}

// driverCallback is the TaskCompletionCallback handed to scheduler.Submit
// for one TaskNode dispatch. Only the first report is honored; subsequent
// calls are no-ops (spec §6.2, §9).
type driverCallback struct {
	exec *Execution
	node *graph.Node

	once sync.Once
}

func (c *driverCallback) report(success bool, msg string, cause error) {
	c.once.Do(func() {
		c.exec.mu.Lock()
		c.exec.recordCompletionLocked(c.node, success, msg, cause)
		c.exec.mu.Unlock()
	})
}

func (c *driverCallback) ReportSuccess()          { c.report(true, "", nil) }
func (c *driverCallback) ReportFailure()          { c.report(false, "", nil) }
func (c *driverCallback) ReportFailureMsg(msg string)    { c.report(false, msg, nil) }
func (c *driverCallback) ReportFailureCause(cause error) { c.report(false, "", cause) }
func (c *driverCallback) ReportFailureMsgCause(msg string, cause error) {
	c.report(false, msg, cause)
}
