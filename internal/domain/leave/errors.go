package leave

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyProcessed is returned when a transition targets a row that is
	// no longer Pending. The row is never mutated.
	ErrAlreadyProcessed = errors.New("request already processed")

	// ErrMissingReason is returned when a rejection carries no reason.
	ErrMissingReason = errors.New("rejection reason required")

	// ErrConcurrencyConflict is returned when the serializable commit of a
	// submission or transition fails. Callers should recompute and retry once.
	ErrConcurrencyConflict = errors.New("concurrent ledger modification")

	// ErrForbidden is returned when someone other than the owning employee
	// edits or cancels a request.
	ErrForbidden = errors.New("not the request owner")

	ErrNotFound = errors.New("request not found")
)

// ValidationError reports invalid submission input. Nothing is persisted;
// the caller re-prompts.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InsufficientBalanceError is surfaced when a request exceeds the primary
// pool and the caller supplied no alternatives and did not acknowledge
// unpaid overflow.
type InsufficientBalanceError struct {
	LeaveTypeID string
	Requested   float64
	Remaining   float64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance for type %s: requested %.1f, remaining %.1f",
		e.LeaveTypeID, e.Requested, e.Remaining)
}
