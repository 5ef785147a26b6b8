package tracker

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateActiveSession is returned when a session start finds an
	// open record for today already.
	ErrDuplicateActiveSession = errors.New("an active session already exists")
	// ErrNoActiveSession is returned when ending or annotating a session
	// while none is open.
	ErrNoActiveSession = errors.New("no active session")
)

// ValidationError names the form field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func missingField(field string) *ValidationError {
	return &ValidationError{Field: field, Reason: "is required"}
}

func malformedField(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Reason: err.Error()}
}
