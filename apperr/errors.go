// Package apperr defines the error taxonomy shared by the rules engine, the
// event store and the game master.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// KindValidation marks an action that violates a game rule.
	KindValidation Kind = "validation"
	// KindNotFound marks an unknown game, lobby, vertex, edge, hex or card.
	KindNotFound Kind = "not_found"
	// KindConflict marks a sequence-number race on event append.
	KindConflict Kind = "conflict"
	// KindSystem marks an unexpected internal failure.
	KindSystem Kind = "system"
)

// Error is the domain error type carrying a kind and a human-readable reason.
type Error struct {
	Kind     Kind
	Reason   string
	Metadata map[string]string
	Cause    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind && (t.Reason == "" || t.Reason == e.Reason)
	}
	return false
}

// Sentinels usable with errors.Is.
var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrConflict   = &Error{Kind: KindConflict}
	ErrSystem     = &Error{Kind: KindSystem}
)

// Validation creates a rule violation error.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Reason: fmt.Sprintf(format, args...)}
}

// NotFound creates an unknown-id error.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Reason: fmt.Sprintf(format, args...)}
}

// Conflict creates a sequence race error.
func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Reason: fmt.Sprintf(format, args...)}
}

// System wraps an unexpected failure.
func System(reason string, cause error) *Error {
	return &Error{Kind: KindSystem, Reason: reason, Cause: cause}
}

// WithMetadata returns a copy of e with the key/value attached.
func (e *Error) WithMetadata(key, value string) *Error {
	cp := *e
	cp.Metadata = make(map[string]string, len(e.Metadata)+1)
	for k, v := range e.Metadata {
		cp.Metadata[k] = v
	}
	cp.Metadata[key] = value
	return &cp
}

// KindOf returns the kind of the first *Error in err's chain, or KindSystem
// for foreign errors.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindSystem
}

func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
func IsConflict(err error) bool   { return KindOf(err) == KindConflict }
func IsSystem(err error) bool     { return KindOf(err) == KindSystem }
