package graph

import (
	"errors"
	"fmt"
)

// ErrConstruction is the sentinel wrapped by every graph/target construction
// failure. Callers that only care about the category can use errors.Is
// against this value; callers that need the detail use errors.As against
// ConstructionError.
var ErrConstruction = errors.New("graph construction error")

// ConstructionError reports why Graph or Target construction failed.
//
// Kind is a short machine-stable tag ("empty", "duplicate_key",
// "duplicate_builder", "missing_dependency", "cycle", "invalid_key",
// "not_in_target", "empty_target") so callers can branch on
// failure mode without string matching Msg.
type ConstructionError struct {
	Kind string
	Msg  string
}

func (e *ConstructionError) Error() string {
	if e == nil {
		return ""
	}
	if e.Kind == "" {
		return fmt.Sprintf("%s: %s", ErrConstruction, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", ErrConstruction, e.Kind, e.Msg)
}

func (e *ConstructionError) Unwrap() error { return ErrConstruction }

func newConstructionError(kind, format string, args ...any) *ConstructionError {
	return &ConstructionError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
