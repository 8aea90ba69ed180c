package service

import "fmt"

// ErrorKind classifies a failed action for the caller. Internal failures
// carry a generic message; the underlying detail stays in the server log.
type ErrorKind int

const (
	KindUnauthenticated ErrorKind = iota + 1
	KindPermissionDenied
	KindInvalidArgument
	KindNotFound
	KindFailedPrecondition
	KindAlreadyExists
	KindInternal
)

// Error is the uniform error shape surfaced by the safety services.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func invalidArgument(message string) *Error {
	return &Error{Kind: KindInvalidArgument, Message: message}
}

func notFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func failedPrecondition(message string) *Error {
	return &Error{Kind: KindFailedPrecondition, Message: message}
}

func alreadyExists(message string) *Error {
	return &Error{Kind: KindAlreadyExists, Message: message}
}

// internalError hides cause detail from the caller; handlers must render
// only the generic message.
func internalError(cause error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", cause: cause}
}
