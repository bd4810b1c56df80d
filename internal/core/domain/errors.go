package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an extraction failure.
type ErrorKind string

const (
	KindNotFound      ErrorKind = "not_found"
	KindUnsupported   ErrorKind = "unsupported"
	KindProviderError ErrorKind = "provider_error"
)

// Unsupported reasons.
const (
	ReasonLive          = "live"
	ReasonAgeRestricted = "age_restricted"
	ReasonUnavailable   = "unavailable"
	ReasonTooLong       = "too_long"
)

var (
	// ErrNoHighlights is returned when a selection is requested over an
	// empty collection.
	ErrNoHighlights = errors.New("no highlights in database")

	// ErrTodayNotSet is returned when an in-place today update finds no row.
	ErrTodayNotSet = errors.New("today's highlight is not set")
)

// ExtractionError is returned by the metadata extractor.
type ExtractionError struct {
	Kind    ErrorKind
	Reason  string // set for KindUnsupported
	Message string
}

func (e *ExtractionError) Error() string {
	if e.Kind == KindUnsupported {
		return fmt.Sprintf("unsupported (%s): %s", e.Reason, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NotFound builds a KindNotFound error.
func NotFound(msg string) *ExtractionError {
	return &ExtractionError{Kind: KindNotFound, Message: msg}
}

// Unsupported builds a KindUnsupported error with the given reason.
func Unsupported(reason, msg string) *ExtractionError {
	return &ExtractionError{Kind: KindUnsupported, Reason: reason, Message: msg}
}

// ProviderError builds a KindProviderError error.
func ProviderError(msg string) *ExtractionError {
	return &ExtractionError{Kind: KindProviderError, Message: msg}
}

// AsExtractionError unwraps err into an *ExtractionError if possible.
func AsExtractionError(err error) (*ExtractionError, bool) {
	var e *ExtractionError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsNotFound reports whether err is a not-found extraction failure.
func IsNotFound(err error) bool {
	e, ok := AsExtractionError(err)
	return ok && e.Kind == KindNotFound
}

// IsUnsupported reports whether err is an unsupported-video failure with the
// given reason. An empty reason matches any.
func IsUnsupported(err error, reason string) bool {
	e, ok := AsExtractionError(err)
	return ok && e.Kind == KindUnsupported && (reason == "" || e.Reason == reason)
}

// IsProviderError reports whether err is a provider-level failure.
func IsProviderError(err error) bool {
	e, ok := AsExtractionError(err)
	return ok && e.Kind == KindProviderError
}

// ValidationError reports a malformed highlight.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid highlight: %s %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// StoreError wraps a datastore failure.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("database %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IsStoreError reports whether err is a datastore failure.
func IsStoreError(err error) bool {
	var e *StoreError
	return errors.As(err, &e)
}
