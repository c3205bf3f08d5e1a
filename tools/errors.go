package tools

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind is the stable classification carried by every failure returned
// from a tool operation. Callers branch on the kind, never on backend
// identity or raw error text.
type ErrorKind string

const (
	ErrPathTraversal   ErrorKind = "path_traversal"
	ErrNotFound        ErrorKind = "not_found"
	ErrSensitive       ErrorKind = "sensitive"
	ErrNotAFile        ErrorKind = "not_a_file"
	ErrInvalidArgument ErrorKind = "invalid_argument"
	ErrSearch          ErrorKind = "search_error"
	ErrAuthRequired    ErrorKind = "auth_required"
	ErrRateLimited     ErrorKind = "rate_limited"
	ErrUpstream        ErrorKind = "upstream_error"
	ErrDecode          ErrorKind = "decode_error"
)

// ToolError wraps a failure with its kind and an optional offending path.
// Messages must never include absolute local paths outside the sandbox root
// or credential values; constructors take root-relative paths only.
type ToolError struct {
	Kind ErrorKind
	Err  error
	Path string

	// RetryAfter is set only for ErrRateLimited, in seconds, when the
	// provider supplied a hint. Zero means no hint.
	RetryAfter int
}

func (e *ToolError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s (%s): %v", e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// NewToolError constructs a classified error.
func NewToolError(kind ErrorKind, err error) *ToolError {
	return &ToolError{Kind: kind, Err: err}
}

// NewPathError constructs a classified error naming the root-relative path
// it concerns.
func NewPathError(kind ErrorKind, err error, relPath string) *ToolError {
	return &ToolError{Kind: kind, Err: err, Path: relPath}
}

// NewRateLimitError constructs an ErrRateLimited error carrying the
// provider's retry-after hint in seconds (zero when absent).
func NewRateLimitError(err error, retryAfter int) *ToolError {
	return &ToolError{Kind: ErrRateLimited, Err: err, RetryAfter: retryAfter}
}

// KindOf extracts the error kind, defaulting to ErrUpstream for errors that
// escaped classification.
func KindOf(err error) ErrorKind {
	var te *ToolError
	if errors.As(err, &te) {
		return te.Kind
	}
	return ErrUpstream
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var te *ToolError
	return errors.As(err, &te) && te.Kind == kind
}

// kindForStatus maps a GitHub API status code onto the error taxonomy.
// Rate-limit 403s are distinguished from plain auth 403s by the caller,
// which inspects the rate-limit headers before calling this.
func kindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return ErrAuthRequired
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status == http.StatusUnprocessableEntity:
		return ErrInvalidArgument
	default:
		return ErrUpstream
	}
}
