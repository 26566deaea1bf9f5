package planner

import (
	"fmt"
)

// Kind classifies planning errors. The connector maps each kind to an HTTP status.
type Kind int

const (
	// KindBadRequest means the request references something that does not exist or
	// carries a value that cannot be used.
	KindBadRequest Kind = iota
	// KindNotSupported means the request is valid but uses a feature the planner
	// does not implement.
	KindNotSupported
	// KindUnexpected means an internal invariant did not hold.
	KindUnexpected
	// KindTypecasting means the result cast type could not be built.
	KindTypecasting
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad request"
	case KindNotSupported:
		return "not supported"
	case KindUnexpected:
		return "unexpected"
	case KindTypecasting:
		return "typecasting"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is a planning failure.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.Err.Error()
	}

	return e.Kind.String() + ": " + e.Message
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

func badRequest(format string, args ...any) *Error {
	return &Error{Kind: KindBadRequest, Message: fmt.Sprintf(format, args...)}
}

func notSupported(format string, args ...any) *Error {
	return &Error{Kind: KindNotSupported, Message: fmt.Sprintf(format, args...)}
}

func unexpected(format string, args ...any) *Error {
	return &Error{Kind: KindUnexpected, Message: fmt.Sprintf(format, args...)}
}

func wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}
