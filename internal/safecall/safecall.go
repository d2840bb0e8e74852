// Package safecall is the single choke point for failures crossing into the
// container engine. Every engine call runs through Call or Do: a success
// passes straight through, a failure is classified, logged once, pushed into
// the store's error slot exactly once, and replaced by the caller's declared
// default. Nothing past this layer ever sees an engine error as a fault.
package safecall

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"

	"github.com/portside/portside/internal/engine"
)

// Kind classifies what went wrong with an engine call.
type Kind int

const (
	// KindUnavailable means the engine endpoint could not be reached.
	KindUnavailable Kind = iota
	// KindNotFound means the target vanished between listing and action.
	KindNotFound
	// KindPermissionDenied means the engine refused the operation.
	KindPermissionDenied
	// KindValidationFailed means input was rejected before any engine call.
	KindValidationFailed
	// KindUnexpected covers everything else; full detail goes to the log
	// only, never to the visible error slot.
	KindUnexpected
)

func (k Kind) String() string {
	switch k {
	case KindUnavailable:
		return "engine unavailable"
	case KindNotFound:
		return "not found"
	case KindPermissionDenied:
		return "permission denied"
	case KindValidationFailed:
		return "invalid input"
	default:
		return "unexpected error"
	}
}

// Error is a classified engine failure.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return e.Op + ": " + e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Validation wraps a client-side rejection so it flows through the same
// channel as engine failures.
func Validation(op string, err error) *Error {
	return &Error{Kind: KindValidationFailed, Op: op, Err: err}
}

// ErrorSink receives the user-visible message for a failure. Implemented by
// the state store.
type ErrorSink interface {
	SetError(msg string)
}

// Call runs fn and guards the boundary. On success the result passes through
// untouched and ok is true. On failure the error is classified and logged,
// sink.SetError is invoked exactly once with a short human-readable message,
// and the declared default is returned with ok false.
func Call[T any](sink ErrorSink, op string, def T, fn func() (T, error)) (T, bool) {
	result, err := fn()
	if err == nil {
		return result, true
	}
	Report(sink, op, err)
	return def, false
}

// Do is the no-result form of Call.
func Do(sink ErrorSink, op string, fn func() error) bool {
	_, ok := Call(sink, op, struct{}{}, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return ok
}

// Report classifies, logs, and surfaces an error that has already occurred.
func Report(sink ErrorSink, op string, err error) {
	kind := Classify(err)
	switch kind {
	case KindUnexpected:
		// Full diagnostic detail stays in the log; the visible message is
		// deliberately generic so internal paths never leak into the UI.
		log.Printf("safecall: %s failed (%s): %+v", op, kind, err)
		sink.SetError(op + ": " + kind.String())
	default:
		log.Printf("safecall: %s failed (%s): %v", op, kind, err)
		sink.SetError(op + ": " + visibleMessage(kind, err))
	}
}

func visibleMessage(kind Kind, err error) string {
	var classified *Error
	if errors.As(err, &classified) && classified.Kind == KindValidationFailed {
		return classified.Err.Error()
	}
	var apiErr *engine.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return kind.String()
}

// Classify maps an error onto the taxonomy. Wrapped *Error values keep their
// kind; engine API statuses and transport failures map onto the obvious
// kinds; everything else is unexpected.
func Classify(err error) Kind {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	var apiErr *engine.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusNotFound:
			return KindNotFound
		case http.StatusForbidden, http.StatusUnauthorized:
			return KindPermissionDenied
		case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
			return KindUnavailable
		default:
			return KindUnexpected
		}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindUnavailable
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return KindUnavailable
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindUnavailable
	}
	return KindUnexpected
}
