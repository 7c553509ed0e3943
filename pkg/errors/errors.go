package errors

import (
	"errors"
	"fmt"
)

// New returns an error with the given message.
func New(msg string) error {
	return errors.New(msg)
}

// ContextError annotates an error with the operation that caused it.
type ContextError struct {
	Context string
	Err     error
}

func (err ContextError) Error() string {
	return fmt.Sprintf("%s: %s", err.Context, err.Err)
}

// Unwrap makes ContextError compatible with the standard errors package.
func (err ContextError) Unwrap() error {
	return err.Err
}

// WithContext wraps `err` so that its message is prefixed with `context`.
func WithContext(err error, context string) error {
	return ContextError{Context: context, Err: err}
}

// RootCause returns the innermost error in the chain of wrapped errors.
func RootCause(err error) error {
	for {
		wrapped, ok := err.(ContextError)
		if !ok {
			return err
		}
		err = wrapped.Err
	}
}

// FriendlyError is an error whose message is meant to be shown to the user
// directly, without any additional context or stack information.
type FriendlyError struct {
	Message string
}

func (err FriendlyError) Error() string {
	return err.Message
}

// NewFriendlyError creates a new FriendlyError with a formatted message.
func NewFriendlyError(format string, args ...interface{}) error {
	return FriendlyError{Message: fmt.Sprintf(format, args...)}
}

// Is delegates to the standard errors package so that callers don't have to
// import both packages.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
