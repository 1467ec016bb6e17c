package solver

import (
	"errors"
	"fmt"
)

var (
	// ErrStackOverflow reports a push onto a full traversal stack. It means
	// the search could not run to completion, which is a different outcome
	// from an infeasible query.
	ErrStackOverflow = errors.New("solver: traversal stack overflow")

	// ErrStackUnderflow reports a pop from an empty traversal stack. The
	// search loop never pops without checking Empty first, so observing
	// this error indicates corrupted internal state.
	ErrStackUnderflow = errors.New("solver: traversal stack underflow")

	// ErrStepBudget reports that the optional expansion budget ran out
	// before the search reached a verdict.
	ErrStepBudget = errors.New("solver: step budget exhausted")
)

// ValidationError describes a query rejected before any search ran.
// It is never produced for a well-formed query that happens to be
// infeasible; that case is a normal false verdict.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("solver: invalid query: %s: %s", e.Field, e.Reason)
}
