package domain

import (
	"context"
	"errors"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidConfiguration indicates component construction was attempted
	// with settings that violate an invariant (chunk overlap >= size,
	// missing prompt placeholder, non-positive k, ...).
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrDimensionMismatch indicates a vector's dimensionality does not
	// match the dimensionality the index was established with.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrUpstreamTimeout indicates a model provider call exceeded its
	// context deadline.
	ErrUpstreamTimeout = errors.New("upstream timeout")

	// ErrUpstreamUnavailable indicates a model provider could not be
	// reached or returned a transport-level failure.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrUngroundedResponseFormat indicates the grading model returned
	// output that does not parse as a structured verdict. This is never
	// coerced into a default verdict.
	ErrUngroundedResponseFormat = errors.New("ungrounded response format")
)

// ErrorKind is a machine-readable classification of a pipeline failure,
// carried on QueryResult so callers can branch without string matching.
type ErrorKind string

// Recognised error kinds.
const (
	ErrorKindNone                     ErrorKind = ""
	ErrorKindInvalidConfiguration     ErrorKind = "invalid_configuration"
	ErrorKindDimensionMismatch        ErrorKind = "dimension_mismatch"
	ErrorKindUpstreamTimeout          ErrorKind = "upstream_timeout"
	ErrorKindUpstreamUnavailable      ErrorKind = "upstream_unavailable"
	ErrorKindUngroundedResponseFormat ErrorKind = "ungrounded_response_format"
	ErrorKindInternal                 ErrorKind = "internal"
)

// KindOf maps an error to its ErrorKind. Context deadline errors map to
// the upstream timeout kind so adapters that return raw context errors
// are still classified correctly.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorKindNone
	case errors.Is(err, ErrInvalidConfiguration):
		return ErrorKindInvalidConfiguration
	case errors.Is(err, ErrDimensionMismatch):
		return ErrorKindDimensionMismatch
	case errors.Is(err, ErrUpstreamTimeout), errors.Is(err, context.DeadlineExceeded):
		return ErrorKindUpstreamTimeout
	case errors.Is(err, ErrUpstreamUnavailable):
		return ErrorKindUpstreamUnavailable
	case errors.Is(err, ErrUngroundedResponseFormat):
		return ErrorKindUngroundedResponseFormat
	default:
		return ErrorKindInternal
	}
}
