package execution

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Priority order for selecting the primary error among several stored
// exceptions: UnexpectedError > TaskFailure > OutputIOError > Interrupted.
// Lower numeric value sorts first (highest priority).
const (
	priorityUnexpected = iota
	priorityTaskFailure
	priorityOutputIOError
	priorityInterrupted
)

// prioritized is implemented by every error type the driver may store.
type prioritized interface {
	error
	priority() int
}

// Aggregate is the error returned by Run when one or more exceptions were
// stored during a run. Primary is the highest-priority error; Suppressed
// holds the rest, in priority order.
type Aggregate struct {
	Primary    error
	Suppressed []error
}

// Error formats the aggregate through go-multierror, with Primary always
// listed first so the highest-priority exception leads the message.
func (a *Aggregate) Error() string {
	return a.multi().Error()
}

// Unwrap supports errors.Is/errors.As against the primary exception, the
// one a caller deciding how to react to a failed Run cares about; the
// suppressed errors remain reachable via Suppressed for callers that want
// to log or report all of them.
func (a *Aggregate) Unwrap() error { return a.Primary }

// WrappedErrors exposes every stored exception, Primary first, via
// go-multierror's convention so callers already written against
// *multierror.Error (e.g. a plugin that logs WrappedErrors()) work
// unchanged against an *Aggregate.
func (a *Aggregate) WrappedErrors() []error {
	return a.multi().WrappedErrors()
}

// multi returns a *multierror.Error view of the aggregate, used by Error
// and WrappedErrors so both follow go-multierror's behavior instead of a
// second, hand-rolled formatting path.
func (a *Aggregate) multi() *multierror.Error {
	me := &multierror.Error{ErrorFormat: multierrorFormat}
	me = multierror.Append(me, a.Primary)
	for _, s := range a.Suppressed {
		me = multierror.Append(me, s)
	}
	return me
}

func multierrorFormat(errs []error) string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	if len(msgs) == 1 {
		return msgs[0]
	}
	return fmt.Sprintf("%s (%d suppressed: %s)", msgs[0], len(msgs)-1, strings.Join(msgs[1:], "; "))
}

// aggregateExceptions sorts stored by priority (UnexpectedError highest)
// and returns nil if stored is empty, a bare error if it holds exactly one
// entry, or an *Aggregate otherwise.
func aggregateExceptions(stored []error) error {
	if len(stored) == 0 {
		return nil
	}

	sorted := make([]error, len(stored))
	copy(sorted, stored)
	sort.SliceStable(sorted, func(i, j int) bool {
		return rankOf(sorted[i]) < rankOf(sorted[j])
	})

	if len(sorted) == 1 {
		return sorted[0]
	}
	return &Aggregate{Primary: sorted[0], Suppressed: sorted[1:]}
}

func rankOf(err error) int {
	if p, ok := err.(prioritized); ok {
		return p.priority()
	}
	return priorityUnexpected
}
