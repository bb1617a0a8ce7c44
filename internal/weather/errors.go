package weather

import (
	"errors"
	"fmt"
)

// ErrorKind separates failures the caller can fix from failures they cannot.
type ErrorKind int

const (
	// Internal means the request could not be completed for reasons outside the
	// caller's control: transport failure, malformed upstream reply, unexpected status.
	Internal ErrorKind = iota + 1
	// InvalidArgument means the caller's input made the request unsatisfiable.
	InvalidArgument
)

func (k ErrorKind) String() string {
	switch k {
	case Internal:
		return "internal"
	case InvalidArgument:
		return "invalid_argument"
	default:
		return "unknown"
	}
}

// Error is returned by Service.Resolve and by adapters for every recoverable failure.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("forecast request failed: %s", e.Message)
}

func internalError(format string, args ...any) *Error {
	return &Error{Kind: Internal, Message: fmt.Sprintf(format, args...)}
}

func invalidArgument(message string) *Error {
	return &Error{Kind: InvalidArgument, Message: message}
}

// NewInternalError builds an Internal error. Adapters use it for unusable replies.
func NewInternalError(format string, args ...any) *Error {
	return internalError(format, args...)
}

// KindOf reports the kind of err, or 0 when err is not an *Error.
func KindOf(err error) ErrorKind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}

// DefectError reports that an adapter produced a request URL that cannot be parsed.
// It is a programming fault, not a caller or upstream problem, and is never an *Error.
type DefectError struct {
	Provider ProviderID
	URL      string
	Err      error
}

func (e *DefectError) Error() string {
	return fmt.Sprintf("adapter %s built an unusable url %q: %v", e.Provider, e.URL, e.Err)
}

func (e *DefectError) Unwrap() error {
	return e.Err
}

const dateNotFoundMessage = "can't find forecast for the specified date; " +
	"make sure that you use the format mm.dd.yyyy and do not specify a past date"

const invalidProviderMessage = "invalid weather provider passed"
