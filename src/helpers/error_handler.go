package helpers

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// -----------------------------------------------------------------------------
// Error Kinds
// -----------------------------------------------------------------------------

// ErrorKind classifies pipeline failures.
type ErrorKind string

const (
	KindParse         ErrorKind = "ParseError"
	KindValidation    ErrorKind = "ValidationError"
	KindFetch         ErrorKind = "FetchError"
	KindDuplicateName ErrorKind = "DuplicateNameError"
	KindEmptySeries   ErrorKind = "EmptySeriesError"
)

// Sentinels for errors.Is matching.
var (
	ErrParse         = errors.New("parse error")
	ErrValidation    = errors.New("validation error")
	ErrFetch         = errors.New("fetch error")
	ErrDuplicateName = errors.New("duplicate name")
	ErrEmptySeries   = errors.New("empty series")
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type DashboardError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *DashboardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *DashboardError) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel of the error kind.
func (e *DashboardError) Is(target error) bool {
	return sentinelFor(e.Kind) == target
}

// Distinct error types for errors.As
type ParseError struct{ DashboardError }
type ValidationError struct{ DashboardError }
type FetchError struct{ DashboardError }
type DuplicateNameError struct{ DashboardError }
type EmptySeriesError struct{ DashboardError }

// -----------------------------------------------------------------------------

func sentinelFor(kind ErrorKind) error {
	switch kind {
	case KindParse:
		return ErrParse
	case KindValidation:
		return ErrValidation
	case KindFetch:
		return ErrFetch
	case KindDuplicateName:
		return ErrDuplicateName
	case KindEmptySeries:
		return ErrEmptySeries
	}
	return nil
}

// -----------------------------------------------------------------------------

func NewParseError(cause error, format string, args ...interface{}) *ParseError {
	return &ParseError{DashboardError{Kind: KindParse, Message: fmt.Sprintf(format, args...), Cause: cause}}
}

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{DashboardError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}}
}

func NewFetchError(cause error, format string, args ...interface{}) *FetchError {
	return &FetchError{DashboardError{Kind: KindFetch, Message: fmt.Sprintf(format, args...), Cause: cause}}
}

func NewDuplicateNameError(name string) *DuplicateNameError {
	return &DuplicateNameError{DashboardError{Kind: KindDuplicateName, Message: fmt.Sprintf("indicator %q already exists", name)}}
}

func NewEmptySeriesError(name string) *EmptySeriesError {
	return &EmptySeriesError{DashboardError{Kind: KindEmptySeries, Message: fmt.Sprintf("series %q has no observations", name)}}
}

// -----------------------------------------------------------------------------

// KindOf returns the kind of a pipeline error, or "" for foreign errors.
func KindOf(err error) ErrorKind {
	var de *DashboardError
	switch e := err.(type) {
	case *ParseError:
		return e.Kind
	case *ValidationError:
		return e.Kind
	case *FetchError:
		return e.Kind
	case *DuplicateNameError:
		return e.Kind
	case *EmptySeriesError:
		return e.Kind
	}
	if errors.As(err, &de) {
		return de.Kind
	}
	for _, kind := range []ErrorKind{KindParse, KindValidation, KindFetch, KindDuplicateName, KindEmptySeries} {
		if errors.Is(err, sentinelFor(kind)) {
			return kind
		}
	}
	return ""
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff runs fn up to maxRetries+1 times with exponential backoff.
// Context cancellation stops waiting between attempts.
func RetryWithBackoff(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(attempt int) error) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := baseDelay * time.Duration(1<<(attempt-1))
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		err := fn(attempt)
		if err == nil {
			return nil
		}
		lastErr = err

		var perm *PermanentError
		if errors.As(err, &perm) {
			return perm.Err
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// -----------------------------------------------------------------------------

// PermanentError stops RetryWithBackoff immediately.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return &PermanentError{Err: err}
}
