package domain

import "errors"

type ErrorKind string

const (
	// ErrKindFetch: a source adapter could not obtain or parse provider data.
	ErrKindFetch ErrorKind = "fetch_failed"
	// ErrKindStore: the persistence layer failed.
	ErrKindStore ErrorKind = "store_failed"
	// ErrKindValidation: the caller omitted a required parameter.
	ErrKindValidation ErrorKind = "validation_failed"
	// ErrKindUpstream: the forwarding proxy's upstream is unavailable.
	ErrKindUpstream ErrorKind = "upstream_unavailable"
)

// Error carries a stable kind plus the underlying cause so callers can branch
// on the kind while keeping the full detail for diagnostics.
type Error struct {
	Kind   ErrorKind
	Source string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Source != "" {
		msg += " [" + e.Source + "]"
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// NewFetchError wraps an adapter failure with the identity of the source.
func NewFetchError(source string, err error) *Error {
	return &Error{Kind: ErrKindFetch, Source: source, Err: err}
}

// NewStoreError wraps a persistence failure with the failing operation.
func NewStoreError(op string, err error) *Error {
	return &Error{Kind: ErrKindStore, Source: op, Err: err}
}

// NewValidationError reports a caller error, e.g. a missing query parameter.
func NewValidationError(detail string) *Error {
	return &Error{Kind: ErrKindValidation, Detail: detail}
}

// NewUpstreamError wraps a failed call to the premium compute upstream.
func NewUpstreamError(err error) *Error {
	return &Error{Kind: ErrKindUpstream, Err: err}
}

// KindOf returns the kind of err, or "" when err carries no kind.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
