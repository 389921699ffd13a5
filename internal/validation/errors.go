// Package validation checks intake answers against the role, placement and
// weighted-criteria rules of a programme year.
package validation

import (
	"fmt"
	"strings"
)

// Error is returned when answers fail validation. It carries the full result
// so callers can show every problem at once.
type Error struct {
	Result Result
}

func (e *Error) Error() string {
	switch len(e.Result.Errors) {
	case 0:
		return "validation failed"
	case 1:
		return fmt.Sprintf("validation failed: %s", e.Result.Errors[0])
	default:
		return fmt.Sprintf("validation failed: %d problems: %s", len(e.Result.Errors), strings.Join(e.Result.Errors, "; "))
	}
}

// AsError returns nil when r is valid and an *Error otherwise
func (r Result) AsError() error {
	if r.Valid() {
		return nil
	}
	return &Error{Result: r}
}
