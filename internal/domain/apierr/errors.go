// Package apierr classifies failures of calls to the transactions API.
package apierr

import (
	"errors"
	"fmt"
)

// Sentinel kinds for upstream errors. Callers branch with errors.Is.
var (
	// ErrUnreachable covers timeouts, refused connections and DNS failures.
	ErrUnreachable = errors.New("API unreachable")
	// ErrMalformed covers bodies that are not JSON or do not match the schema.
	ErrMalformed = errors.New("malformed API response")
	// ErrInvalidRequest is returned before any I/O when the caller's input is unusable.
	ErrInvalidRequest = errors.New("invalid request")
)

// StatusError is a non-2xx answer from the API.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API returned %d: %s", e.StatusCode, e.Message)
}

// OpError tags an error with the operation that produced it and its kind.
type OpError struct {
	Op   string
	Kind error
	Err  error
}

func (e *OpError) Error() string {
	switch {
	case e.Err == nil:
		return e.Op + ": " + e.Kind.Error()
	case e.Kind == nil || errors.Is(e.Err, e.Kind):
		return e.Op + ": " + e.Err.Error()
	default:
		return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
	}
}

// Unwrap exposes both the kind and the cause to errors.Is/As.
func (e *OpError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// Wrap tags err with op, keeping its kind.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Err: err}
}

// NewKind builds an error of the given kind for op.
func NewKind(op string, kind error) error {
	return &OpError{Op: op, Kind: kind}
}

// WrapKind tags err with op and kind.
func WrapKind(op string, kind, err error) error {
	return &OpError{Op: op, Kind: kind, Err: err}
}

// Error classes as shown to the user and used as metric labels.
const (
	KindUnreachable  = "unreachable"
	KindStatus       = "status"
	KindMalformed    = "malformed"
	KindInvalidInput = "invalid_input"
	KindInternal     = "internal"
)

// Classify maps err onto one of the Kind* classes.
func Classify(err error) string {
	var se *StatusError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &se):
		return KindStatus
	case errors.Is(err, ErrUnreachable):
		return KindUnreachable
	case errors.Is(err, ErrMalformed):
		return KindMalformed
	case errors.Is(err, ErrInvalidRequest):
		return KindInvalidInput
	default:
		return KindInternal
	}
}
