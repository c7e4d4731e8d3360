// Package cdbgerr defines the typed error kinds from spec.md §7. A library
// never calls log.Fatal or os.Exit itself -- it wraps a cause with a Kind
// and a one-line message and returns it; only cmd/cdbg decides what to do
// with a fatal Kind. This replaces the teacher's DIE_ON_ERR(err, msg, ...)
// helper, which logged and exited right at the call site.
package cdbgerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies an Error per spec.md §7.
type Kind int

const (
	// InvalidSequence: non-ACGT character or a sequence shorter than K.
	// Fails the whole consume_sequence_and_update call with no state
	// change.
	InvalidSequence Kind = iota
	// OracleMismatch: the oracle's K disagrees with the engine's K.
	// Fatal at construction.
	OracleMismatch
	// CorruptIndex: an internal invariant was violated (dangling tag
	// pointer, slot/endpoint inconsistency). Fatal, surfaces to caller.
	CorruptIndex
)

func (k Kind) String() string {
	switch k {
	case InvalidSequence:
		return "InvalidSequence"
	case OracleMismatch:
		return "OracleMismatch"
	case CorruptIndex:
		return "CorruptIndex"
	default:
		return "Unknown"
	}
}

// Error is a typed failure with a single-line cause, never silently
// dropped.
type Error struct {
	Kind Kind
	msg  string
	// cause is unexported but reachable via Unwrap, so errors.Is/As work
	// on it (Error has no Cause method, so pkg/errors.Cause stops here).
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds an Error with no underlying cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, msg: msg}
}

// Newf builds an Error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a Kind and message to an existing cause, preserving it for
// Unwrap/errors.Is/errors.As.
func Wrap(kind Kind, cause error, msg string) *Error {
	if cause == nil {
		return New(kind, msg)
	}
	return &Error{Kind: kind, msg: msg, cause: errors.WithStack(cause)}
}

// Is reports whether err is a *Error of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Fatal reports whether a Kind is defined by spec.md §7 to be fatal
// (surface to the caller / abort the process), as opposed to one that is
// retried or ignored transparently (transient partition contention, which
// never surfaces as an Error at all).
func (k Kind) Fatal() bool {
	switch k {
	case OracleMismatch, CorruptIndex:
		return true
	default:
		return false
	}
}
