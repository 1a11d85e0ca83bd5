// Package pipelineerr defines the error taxonomy shared by every stage of
// the indexing pipeline. Each sentinel is wrapped with context via %w so
// callers can both read a human message and test the class with errors.Is.
package pipelineerr

import "errors"

var (
	// ErrConfiguration marks an invalid option combination caught before
	// any I/O happens (e.g. metadata block >= chunk size, unknown encoding).
	ErrConfiguration = errors.New("configuration error")

	// ErrNotFound marks a missing required table or an explicitly
	// configured prompt file that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrExtractionParse marks malformed LLM output during graph
	// extraction. Recovered locally: the offending text unit is skipped.
	ErrExtractionParse = errors.New("extraction parse error")

	// ErrModel marks an LLM transport failure. Recovered locally: the
	// contribution is skipped and never retried by the core.
	ErrModel = errors.New("model error")

	// ErrValidation marks a finalization invariant violation (e.g. half
	// or more of the relationships were dropped during validation).
	ErrValidation = errors.New("validation error")

	// ErrCancelled marks a cooperative cancellation signal. It always
	// propagates to the runtime; it is never recovered locally.
	ErrCancelled = errors.New("cancelled")
)

// Configuration returns an ErrConfiguration-kind error with the given message.
func Configuration(msg string) error {
	return &taggedError{msg: msg, kind: ErrConfiguration}
}

// NotFound wraps a missing-resource message as ErrNotFound.
func NotFound(msg string) error {
	return &taggedError{msg: msg, kind: ErrNotFound}
}

// Validation wraps a finalization-invariant message as ErrValidation.
func Validation(msg string) error {
	return &taggedError{msg: msg, kind: ErrValidation}
}

// ExtractionParse wraps a malformed-LLM-output message as ErrExtractionParse.
func ExtractionParse(msg string) error {
	return &taggedError{msg: msg, kind: ErrExtractionParse}
}

// Model wraps an LLM transport-failure message as ErrModel.
func Model(msg string) error {
	return &taggedError{msg: msg, kind: ErrModel}
}

// Cancelled wraps a cooperative-cancellation message as ErrCancelled.
func Cancelled(msg string) error {
	return &taggedError{msg: msg, kind: ErrCancelled}
}

// IsCancelled reports whether err is (or wraps) ErrCancelled.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// taggedError pairs a message with one of the sentinel kinds above so
// errors.Is(err, ErrConfiguration) (etc.) keeps working after wrapping.
type taggedError struct {
	msg  string
	kind error
}

func (e *taggedError) Error() string { return e.kind.Error() + ": " + e.msg }
func (e *taggedError) Unwrap() error { return e.kind }
