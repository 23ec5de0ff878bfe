package figmameta

import (
	"errors"
	"fmt"

	"github.com/hellenic-development/figma-meta/pkg/figma"
)

// Code classifies an extraction failure.
type Code string

const (
	// CodeInvalidInput: a required input is missing or out of range. No request was made.
	CodeInvalidInput Code = "INVALID_INPUT"
	// CodeAPI: Figma answered with a non-success status.
	CodeAPI Code = "API_ERROR"
	// CodeInternal: anything else (transport failure, malformed response, encoding).
	CodeInternal Code = "INTERNAL_ERROR"
)

// Error is the error type returned by Run.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func wrapError(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// ErrorCode returns the Code carried by err, CodeInternal for foreign
// errors and "" for nil.
func ErrorCode(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// StatusCode returns the HTTP status of a Figma API failure wrapped in err, or 0.
func StatusCode(err error) int {
	var apiErr *figma.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// UserMessage renders err the way front ends show it: validation errors as
// is, API errors with their status code, everything else as a generic
// failure carrying the error text.
func UserMessage(err error) string {
	switch ErrorCode(err) {
	case "":
		return ""
	case CodeInvalidInput:
		var e *Error
		errors.As(err, &e)
		return e.Message
	case CodeAPI:
		return fmt.Sprintf("Figma API error: HTTP %d", StatusCode(err))
	default:
		return fmt.Sprintf("Unexpected error: %v", err)
	}
}
