// Package errors carries classified errors through the pipeline
//
// import as perr at call sites
package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
)

// Kind classifies an error by what the caller can do about it
type Kind uint8

const (
	// KindUnknown covers everything not classified below
	KindUnknown Kind = iota

	// KindInvalid marks rejected values: bad arguments, out-of-range fields
	KindInvalid

	// KindParse marks undecodable payloads: state file, config file, responses
	KindParse

	// KindConfig marks configuration the process must not start on
	KindConfig

	// KindNotFound marks missing rows or keys
	KindNotFound

	// KindConflict marks constraint violations in the source database
	KindConflict

	// KindStorage marks database and state-file failures
	KindStorage

	// KindUnavailable marks connectivity failures a retry may outlive
	KindUnavailable

	// KindPanic marks recovered panics
	KindPanic
)

var kindNames = map[Kind]string{
	KindUnknown:     "unknown",
	KindInvalid:     "invalid",
	KindParse:       "parse",
	KindConfig:      "config",
	KindNotFound:    "not_found",
	KindConflict:    "conflict",
	KindStorage:     "storage",
	KindUnavailable: "unavailable",
	KindPanic:       "panic",
}

// String returns the snake_case name used in logs and wire payloads
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// MarshalText renders the kind name so envelopes carry "storage" not 6
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Error is a classified error with an optional wrapped cause
type Error struct {
	kind  Kind
	msg   string
	cause error
}

// Error renders msg, then the cause chain if present
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

// Unwrap exposes the cause to errors.Is / errors.As
func (e *Error) Unwrap() error { return e.cause }

// Kind returns the classification
func (e *Error) Kind() Kind { return e.kind }

// Message returns the message without the cause chain
func (e *Error) Message() string { return e.msg }

// New builds a classified error without a cause
func New(kind Kind, msg string) error { return &Error{kind: kind, msg: msg} }

// Newf is New with formatting
func Newf(kind Kind, format string, a ...any) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, a...)}
}

// Wrap classifies cause under kind with a short context message
func Wrap(cause error, kind Kind, msg string) error {
	return &Error{kind: kind, msg: msg, cause: cause}
}

// Wrapf is Wrap with formatting
func Wrapf(cause error, kind Kind, format string, a ...any) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, a...), cause: cause}
}

// KindOf walks the chain for the first classified error; unclassified
// errors read as KindUnknown
func KindOf(err error) Kind {
	var e *Error
	if stderrs.As(err, &e) {
		return e.kind
	}
	return KindUnknown
}

// HasKind reports whether err classifies as kind
func HasKind(err error, kind Kind) bool { return KindOf(err) == kind }

// Root unwraps to the deepest cause
func Root(err error) error {
	for err != nil {
		next := stderrs.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
	return nil
}

// HTTPStatus maps kinds onto statuses for the ops endpoints
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalid:
		return http.StatusUnprocessableEntity
	case KindParse, KindConfig:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
