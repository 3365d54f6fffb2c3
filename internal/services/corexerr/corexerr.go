// Package corexerr defines the core's error taxonomy: a small set of
// named kinds callers can branch on instead of matching message strings.
package corexerr

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation failed.
type Kind string

const (
	// KindValidation means the caller supplied a malformed or out-of-range
	// argument (e.g. a negative fade duration).
	KindValidation Kind = "VALIDATION"
	// KindNotFound means a referenced fixture, scene, or cue list does not
	// exist in the repository.
	KindNotFound Kind = "NOT_FOUND"
	// KindAtBoundary means a cue-list navigation request (next/previous)
	// was issued while already at the first or last cue.
	KindAtBoundary Kind = "AT_BOUNDARY"
	// KindEmptyCueList means an operation that requires at least one cue
	// was issued against a cue list with none.
	KindEmptyCueList Kind = "EMPTY_CUE_LIST"
	// KindTransientIO means a repository or network call failed in a way
	// a retry might resolve (a closed connection, a dropped packet).
	KindTransientIO Kind = "TRANSIENT_IO"
	// KindFatalIO means a repository or network call failed in a way no
	// retry will resolve (a corrupt database file, a missing socket).
	KindFatalIO Kind = "FATAL_IO"
)

// Error is the core's error type. Op names the failing operation
// (e.g. "playback.NextCue") and Err optionally wraps the underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an Error with no wrapped cause.
func New(kind Kind, op string) *Error {
	return &Error{Kind: kind, Op: op}
}

// Wrap constructs an Error wrapping err. Returns nil if err is nil.
func Wrap(kind Kind, op string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf returns the Kind of err if it is (or wraps) a *Error, and ok=true.
func KindOf(err error) (kind Kind, ok bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
