package errors

import (
	stderrors "errors"
	"net/http"
	"strings"
)

// Error is the domain error type with structured metadata.
type Error struct {
	Code     Code              // Machine-readable error code
	Message  string            // Internal message (for logs)
	Metadata map[string]string // Additional context for templating
	Cause    error             // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil && e.Message == "" {
		return e.Cause.Error()
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a simple domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WithMetadata creates a domain error with metadata for i18n templating.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Metadata: metadata,
	}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf returns the code of the first domain error in the chain, or
// CodeUnknown when there is none.
func CodeOf(err error) Code {
	var target *Error
	if stderrors.As(err, &target) {
		return target.Code
	}
	return CodeUnknown
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	return stderrors.Is(err, &Error{Code: code})
}

// MetadataOf returns the metadata of the first domain error in the chain.
func MetadataOf(err error) map[string]string {
	var target *Error
	if stderrors.As(err, &target) {
		return target.Metadata
	}
	return nil
}

// FromHTTPStatus classifies a non-2xx authority response. reasonCode is the
// optional machine-readable code from the body and message the human text.
func FromHTTPStatus(status int, reasonCode string, message string) *Error {
	if code := Code(strings.ToUpper(strings.TrimSpace(reasonCode))); code != "" && knownCode(code) {
		return WithMetadata(code, message, map[string]string{"Reason": message})
	}
	lower := strings.ToLower(message)
	var code Code
	switch {
	case status >= http.StatusInternalServerError:
		code = CodeNetwork
	case status == http.StatusUnauthorized:
		code = CodeUnauthorized
	case status == http.StatusNotFound:
		code = CodeNotFound
	case status == http.StatusTooManyRequests || status == http.StatusRequestTimeout:
		code = CodeNetwork
	case strings.Contains(lower, "not your turn"):
		code = CodeNotYourTurn
	case strings.Contains(lower, "already completed"), strings.Contains(lower, "not active"):
		code = CodeGameCompleted
	case status >= http.StatusBadRequest:
		code = CodeInvalidMove
	default:
		code = CodeUnknown
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return WithMetadata(code, message, map[string]string{"Reason": message})
}

func knownCode(code Code) bool {
	switch code {
	case CodeNetwork, CodeNotFound, CodeUnauthorized, CodeNotYourTurn,
		CodeGameCompleted, CodeAlreadySubmitting, CodeOccupied, CodeOutOfBounds,
		CodeResourceUnavailable, CodeInvalidMove:
		return true
	default:
		return false
	}
}
