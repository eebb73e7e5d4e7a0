// Package errors provides error types and classification for the site auditor.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// ErrorType categorizes errors for handling and reporting decisions.
type ErrorType int

const (
	// Unknown is an uncategorized error.
	Unknown ErrorType = iota
	// Network represents network-related errors (DNS, connection).
	Network
	// Timeout represents timeout errors.
	Timeout
	// NotFound represents 404 errors.
	NotFound
	// ServerError represents 5xx errors.
	ServerError
	// ClientError represents 4xx errors (except 404).
	ClientError
	// Cancelled represents context cancellation.
	Cancelled
)

// String returns the string representation of ErrorType.
func (t ErrorType) String() string {
	switch t {
	case Network:
		return "network_error"
	case Timeout:
		return "timeout"
	case NotFound:
		return "not_found"
	case ServerError:
		return "server_error"
	case ClientError:
		return "client_error"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// FetchError represents a categorized page-fetch error.
type FetchError struct {
	Type       ErrorType
	URL        string
	Operation  string
	Message    string
	Cause      error
	StatusCode int
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error during %s on %s: %s (caused by: %v)",
			e.Type.String(), e.Operation, e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error during %s on %s: %s",
		e.Type.String(), e.Operation, e.URL, e.Message)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches a target.
func (e *FetchError) Is(target error) bool {
	t, ok := target.(*FetchError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// New creates a new FetchError.
func New(errType ErrorType, url, operation, message string, cause error) *FetchError {
	return &FetchError{
		Type:      errType,
		URL:       url,
		Operation: operation,
		Message:   message,
		Cause:     cause,
	}
}

// NewNetworkError creates a network error.
func NewNetworkError(url, operation string, cause error) *FetchError {
	return New(Network, url, operation, "network failure", cause)
}

// NewTimeoutError creates a timeout error.
func NewTimeoutError(url, operation string, cause error) *FetchError {
	return New(Timeout, url, operation, "request timed out", cause)
}

// NewCancelledError creates a cancelled error.
func NewCancelledError(url, operation string) *FetchError {
	return New(Cancelled, url, operation, "operation cancelled", nil)
}

// Categorize determines the error type from a generic error.
func Categorize(err error, url string) *FetchError {
	if err == nil {
		return nil
	}

	// Already a FetchError
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr
	}

	// Check for context cancellation
	if errors.Is(err, context.Canceled) {
		return NewCancelledError(url, "request")
	}

	// Check for timeout
	if isTimeout(err) {
		return NewTimeoutError(url, "request", err)
	}

	// Check for network errors
	if isNetworkError(err) {
		return NewNetworkError(url, "request", err)
	}

	// Default to unknown
	return New(Unknown, url, "request", err.Error(), err)
}

// CategorizeHTTPStatus creates an error from an HTTP status code, or nil
// for success-range codes.
func CategorizeHTTPStatus(statusCode int, url string) *FetchError {
	switch {
	case statusCode == 404:
		err := New(NotFound, url, "request", "page not found", nil)
		err.StatusCode = statusCode
		return err
	case statusCode >= 500:
		err := New(ServerError, url, "request", fmt.Sprintf("server returned %d", statusCode), nil)
		err.StatusCode = statusCode
		return err
	case statusCode >= 400:
		err := New(ClientError, url, "request", fmt.Sprintf("client error %d", statusCode), nil)
		err.StatusCode = statusCode
		return err
	default:
		return nil
	}
}

// PageMessage derives the human-readable error string recorded on a
// PageRecord for a failed fetch.
func PageMessage(err error) string {
	if err == nil {
		return ""
	}
	switch GetErrorType(err) {
	case Timeout:
		return "Request timed out (10s limit)"
	case Network, Cancelled:
		return "Network error or CORS blocked"
	default:
		var fetchErr *FetchError
		if errors.As(err, &fetchErr) && fetchErr.Cause != nil {
			return fetchErr.Cause.Error()
		}
		return err.Error()
	}
}

// isTimeout checks if an error is a timeout.
func isTimeout(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	// Check for net.Error timeout
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	// Check error message
	errStr := err.Error()
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") ||
		strings.Contains(errStr, "context deadline")
}

// isNetworkError checks if an error is network-related.
func isNetworkError(err error) bool {
	if err == nil {
		return false
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	// Check for syscall errors
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return true
	}

	// Check error message
	errStr := err.Error()
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "network is unreachable") ||
		strings.Contains(errStr, "dial tcp")
}

// GetStatusCode extracts the status code from an error.
func GetStatusCode(err error) int {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.StatusCode
	}
	return 0
}

// GetErrorType extracts the error type from an error.
func GetErrorType(err error) ErrorType {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Type
	}
	if isTimeout(err) {
		return Timeout
	}
	if isNetworkError(err) {
		return Network
	}
	return Unknown
}
