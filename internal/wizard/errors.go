// Package wizard implements the intake wizard: per-session answers, the
// visible step list, validated navigation and submission.
package wizard

import (
	"errors"
	"fmt"

	"github.com/jonathan/matching-guru/internal/wizard/steps"
)

// ErrSessionNotFound is returned when a session id is unknown, expired or owned by someone else
var ErrSessionNotFound = errors.New("intake session not found")

// TransitionError is returned when a navigation call is not allowed from the current step
type TransitionError struct {
	Step    steps.ID
	Action  string
	Message string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s from step %s: %s", e.Action, e.Step, e.Message)
}

// SubmitError wraps an upstream failure during participant creation
type SubmitError struct {
	Cause error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("participant submission failed: %v", e.Cause)
}

func (e *SubmitError) Unwrap() error {
	return e.Cause
}
