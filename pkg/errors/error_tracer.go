package errors

import "github.com/pkg/errors"

// ErrorTracer attaches a stack trace to an error crossing a usecase boundary.
type ErrorTracer struct {
	Message string
	Err     error
}

// NewTracer creates a new ErrorTracer with the provided message.
func NewTracer(message string) *ErrorTracer {
	return &ErrorTracer{
		Message: message,
	}
}

// TracerFromError creates a new ErrorTracer from an existing error, preserving the stack trace.
func TracerFromError(err error) *ErrorTracer {
	return NewTracer(err.Error()).Wrap(err)
}

// StackTracer is an interface that requires a StackTrace method.
type StackTracer interface {
	StackTrace() errors.StackTrace
}

func (e *ErrorTracer) Error() string {
	if e.Err == nil || e.Err.Error() == e.Message {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ErrorTracer) Unwrap() error {
	return e.Err
}

// Wrap wraps an existing error into the ErrorTracer, preserving the stack trace.
func (e *ErrorTracer) Wrap(err error) *ErrorTracer {
	e.Err = err
	if _, ok := err.(StackTracer); !ok {
		e.Err = errors.WithStack(err)
	}

	return e
}

// StackTrace returns the stack trace of the underlying error if it implements StackTracer.
func (e *ErrorTracer) StackTrace() errors.StackTrace {
	if errWithStack, ok := e.Unwrap().(StackTracer); ok {
		return errWithStack.StackTrace()
	}
	return nil
}
