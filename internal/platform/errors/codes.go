// Package errors provides structured error handling with i18n support.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Transport errors
	CodeNetwork      Code = "NETWORK_ERROR"
	CodeNotFound     Code = "NOT_FOUND"
	CodeUnauthorized Code = "UNAUTHORIZED"

	// Turn errors
	CodeNotYourTurn       Code = "NOT_YOUR_TURN"
	CodeGameCompleted     Code = "GAME_COMPLETED"
	CodeAlreadySubmitting Code = "ALREADY_SUBMITTING"

	// Local placement errors
	CodeOccupied            Code = "OCCUPIED"
	CodeOutOfBounds         Code = "OUT_OF_BOUNDS"
	CodeResourceUnavailable Code = "RESOURCE_UNAVAILABLE"

	// Authority rejections
	CodeInvalidMove Code = "INVALID_MOVE"
)

// Retryable reports whether a later poll or user retry may succeed without
// any change on the client side.
func (c Code) Retryable() bool {
	return c == CodeNetwork
}

// Local reports whether the code is produced before any request is issued.
func (c Code) Local() bool {
	switch c {
	case CodeOccupied, CodeOutOfBounds, CodeResourceUnavailable, CodeAlreadySubmitting:
		return true
	default:
		return false
	}
}

// HTTPStatus maps domain codes to the status an authority would answer with.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeOccupied,
		CodeOutOfBounds,
		CodeResourceUnavailable,
		CodeInvalidMove,
		CodeNotYourTurn,
		CodeGameCompleted:
		return http.StatusBadRequest
	case CodeAlreadySubmitting:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeNetwork:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
