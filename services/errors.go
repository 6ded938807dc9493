package services

import "fmt"

// ValidationError marks malformed input (missing signature, missing
// rejection reason). Recoverable by the caller, mapped to 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// InvalidStateError marks an operation attempted against a timesheet that is
// not in the expected state (double-approval, submit-after-submit, acting on
// a terminal timesheet). Mapped to 409.
type InvalidStateError struct {
	Current  string
	Expected string
}

func (e *InvalidStateError) Error() string {
	if e.Expected == "" {
		return fmt.Sprintf("timesheet is in state %q and cannot accept this operation", e.Current)
	}
	return fmt.Sprintf("timesheet is in state %q, expected %q", e.Current, e.Expected)
}

// AuthorizationError marks an actor lacking the role or relationship for the
// current stage. Mapped to 403, distinct from validation failures.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

// DependencyFailure wraps a PDF generation or storage error. The whole
// transition rolls back, so the caller may safely retry the same call.
type DependencyFailure struct {
	Op  string
	Err error
}

func (e *DependencyFailure) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *DependencyFailure) Unwrap() error {
	return e.Err
}
