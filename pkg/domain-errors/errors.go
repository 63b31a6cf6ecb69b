// Package domainerrors defines the coded error type shared by all verticals.
// Services return coded errors; transport translates codes to HTTP statuses
// so handlers never invent status codes ad hoc.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error for propagation and transport mapping.
type Code string

const (
	// CodeValidation: input failed a domain validation rule (e.g. qty < 1).
	CodeValidation Code = "validation"
	// CodeInvalidInput: malformed identifier or payload at a trust boundary.
	CodeInvalidInput Code = "invalid_input"
	// CodeBadRequest: request is syntactically broken or missing fields.
	CodeBadRequest Code = "bad_request"
	// CodeNotFound: the referenced entity does not exist, or no seller
	// resolves for a product (an orphaned record).
	CodeNotFound Code = "not_found"
	// CodeUnauthorized: missing or invalid credentials.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden: authenticated but not allowed (wrong role, wrong owner).
	CodeForbidden Code = "forbidden"
	// CodeConflict: the operation partially applied or collided with
	// existing state; details carry the per-resource outcome.
	CodeConflict Code = "conflict"
	// CodeTimeout: the operation was abandoned before completion.
	CodeTimeout Code = "timeout"
	// CodeInvariantViolation: internal state broke a documented invariant.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeInternal: infrastructure failure; the caller may retry.
	CodeInternal Code = "internal"
)

// Error is a coded domain error with optional structured details.
type Error struct {
	Code    Code
	Message string
	Details map[string]any
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New constructs a coded error with no underlying cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// WithDetails attaches structured details (skipped items, per-seller
// outcomes) so callers always receive an explanation, never a bare error.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool { return HasCode(err, code) }

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Load extracts the coded error from a chain, or nil if none present.
func Load(err error) *Error {
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return nil
}

// ToHTTPStatus maps a code to its HTTP response status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeInvalidInput, CodeBadRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeConflict:
		return http.StatusConflict
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
