/*
Package errs provides custom error types and application-level error code constants.

This file defines the CustomError struct, which implements the standard Go error interface
and carries a business code, a client-safe message, and the HTTP status it maps to.
*/
package errs

import (
	"fmt"
	"net/http"
	"strings"

	"mocrs/internal/pkg/logx"
)

// CustomError is the custom error structure used throughout the application.
type CustomError struct {
	// Code is the business error code (see constants definition).
	Code int

	// Message is the client-safe error description.
	Message string

	// Status is the standard HTTP status code corresponding to this error.
	Status int
}

// Error implements the standard Go error interface.
func (e CustomError) Error() string {
	return fmt.Sprintf("Error Code %d (HTTP %d): %s", e.Code, e.Status, e.Message)
}

// NewError constructs a *CustomError from a predefined error code.
// details fill printf verbs in the message template. For ErrUnknown the first
// detail may be the underlying error, which is logged and never exposed.
// An unknown code yields ErrUnknown.
func NewError(code int, details ...any) *CustomError {
	templateErr, ok := errorMap[code]

	if !ok {
		logx.Error(
			fmt.Errorf("attempted to create an error with an unknown code in errorMap"),
			"Unknown error code requested",
			"requested_code", code,
		)

		unknownErr := errorMap[ErrUnknown]
		return &unknownErr
	}

	customErr := templateErr

	if customErr.Status == 0 {
		customErr.Status = http.StatusBadRequest
	}

	hasVerb := strings.Contains(customErr.Message, "%")

	switch {
	case code == ErrUnknown && len(details) > 0:
		if originalErr, ok := details[0].(error); ok {
			logx.Error(originalErr, "Handling ErrUnknown with underlying error")
		}
	case len(details) > 0 && hasVerb:
		customErr.Message = fmt.Sprintf(customErr.Message, details...)
	case len(details) > 0:
		logx.Warn(
			"Details provided for error, but message template has no formatting placeholders. Details ignored.",
			"code", code,
		)
	case hasVerb:
		customErr.Message = stripVerb(customErr.Message)
	}

	return &customErr
}

// stripVerb drops a trailing ": %s"-style placeholder from a template used without details.
func stripVerb(msg string) string {
	if i := strings.Index(msg, "%"); i >= 0 {
		msg = msg[:i]
	}
	return strings.TrimRight(msg, ": ")
}

// Is reports whether err is a *CustomError with the given code.
func Is(err error, code int) bool {
	ce, ok := err.(*CustomError)
	return ok && ce != nil && ce.Code == code
}
