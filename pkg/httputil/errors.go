package httputil

import (
	"errors"
	"fmt"
	"net/http"
)

// TransientError marks a fetch failure that is worth retrying:
// network faults, timeouts, rate limiting, upstream 5xx.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient fetch failure: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// PermanentError marks a fetch failure that retrying cannot fix:
// not-found codes, malformed payloads, schema mismatches. Callers must
// treat it as "no data from this provider", not as a fatal condition.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent fetch failure: %v", e.Err)
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// Transient wraps err as a retryable failure.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// Permanent wraps err as a non-retryable failure.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsTransient reports whether err is a retryable fetch failure.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// IsPermanent reports whether err is a non-retryable fetch failure.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// IsRetryableStatus reports whether an HTTP status should be retried.
// 5xx server errors and 429 Too Many Requests are retryable.
func IsRetryableStatus(statusCode int) bool {
	return statusCode >= 500 || statusCode == http.StatusTooManyRequests
}

// ClassifyStatus converts a non-2xx HTTP status into the matching error kind.
func ClassifyStatus(statusCode int) error {
	if IsRetryableStatus(statusCode) {
		return Transient(fmt.Errorf("unexpected status code: %d", statusCode))
	}
	return Permanent(fmt.Errorf("unexpected status code: %d", statusCode))
}
