package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Error codes shared by every network-touching operation in the pipeline.
const (
	CodeTimeout         = "timeout"
	CodeUpstreamStatus  = "upstream_status"
	CodeContentTooShort = "content_too_short"
	CodeMarkersMissing  = "markers_missing"
	CodeRequestFailed   = "request_failed"
)

// Error is a classified network/extraction failure: a stable code, a
// human-safe message and a retryable flag, so callers can make retry
// decisions without parsing error text.
type Error struct {
	Code      string
	Message   string
	Retryable bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code, message string, retryable bool) *Error {
	return &Error{Code: code, Message: message, Retryable: retryable}
}

// StatusError classifies a non-success HTTP status. Server-side failures and
// rate limiting are transient; client errors are not.
func StatusError(status int, url string) *Error {
	retryable := status >= 500 || status == http.StatusTooManyRequests
	return newError(CodeUpstreamStatus,
		fmt.Sprintf("HTTP %d from %s", status, url), retryable)
}

// Classify maps any error from a network operation onto a classified Error.
// Already-classified errors pass through; timeouts are retryable; everything
// else is treated as a transient transport failure.
func Classify(err error) *Error {
	var fetchErr *Error
	if errors.As(err, &fetchErr) {
		return fetchErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return newError(CodeTimeout, err.Error(), true)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newError(CodeTimeout, err.Error(), true)
	}

	return newError(CodeRequestFailed, err.Error(), true)
}

// IsRetryable reports whether a failed operation is worth rescheduling.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return Classify(err).Retryable
}
