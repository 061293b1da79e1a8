package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorDetails represents detailed information about an error.
type ErrorDetails struct {
	// Message (required) is the user-defined error message.
	// E.g. "price must be greater than zero".
	Message string

	// Code (required) is the error code string, one of the ErrorCode constants.
	Code string

	// Field (optional) is the related field the error occurred on, if any.
	Field string

	// Operands (optional) are the offending values, enough to reproduce the failure.
	Operands []any
}

// NewErrorDetails creates a new ErrorDetails struct with the given parameters.
func NewErrorDetails(message string, code ErrorCode, field string) *ErrorDetails {
	return &ErrorDetails{
		Message: message,
		Code:    string(code),
		Field:   field,
	}
}

// WithOperands returns a copy of e carrying the given operands.
// Sentinels stay untouched so they can be shared between goroutines.
func (e *ErrorDetails) WithOperands(operands ...any) *ErrorDetails {
	cp := *e
	cp.Operands = operands
	return &cp
}

// Error() is used to implement the Golang `error` interface.
func (e *ErrorDetails) Error() string {
	if len(e.Operands) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Operands)
}

// Is matches any ErrorDetails with the same code, so a sentinel matches its copies.
func (e *ErrorDetails) Is(target error) bool {
	t, ok := target.(*ErrorDetails)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Category returns the category of the error code.
func (e *ErrorDetails) Category() Category {
	return CategoryOf(ErrorCode(e.Code))
}

// ErrorCodeEquals checks whether a given `error` (or anything it wraps) has a specific code.
func ErrorCodeEquals(err error, code ErrorCode) bool {
	var errDetails *ErrorDetails
	if !stderrors.As(err, &errDetails) {
		return false
	}

	return errDetails.Code == string(code)
}
