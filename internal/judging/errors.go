package judging

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAssigned rejects a score when no pending assignment exists for
	// the (judge, submission) pair.
	ErrNotAssigned = errors.New("no pending assignment for this judge and submission")

	// ErrDuplicateScore rejects a second score for a (judge, submission)
	// pair. Scores are locked on creation and never replaced.
	ErrDuplicateScore = errors.New("score already exists for this judge and submission")

	// ErrAlreadyAssigned rejects a second assignment for the same pair.
	ErrAlreadyAssigned = errors.New("judge already assigned to this submission")

	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")
)

// ValidationError rejects malformed input before any write occurs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}
