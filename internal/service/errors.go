package service

import "errors"

// Kind classifies a service failure; handlers map it to an HTTP status.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindConflict
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error is the failure half of every service result. Message is safe to
// show to the caller; Err (if any) is only for server-side logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

const msgInternal = "Internal server error"

func validationError(msg string) error   { return &Error{Kind: KindValidation, Message: msg} }
func notFoundError(msg string) error     { return &Error{Kind: KindNotFound, Message: msg} }
func conflictError(msg string) error     { return &Error{Kind: KindConflict, Message: msg} }
func unauthorizedError(msg string) error { return &Error{Kind: KindUnauthorized, Message: msg} }

func internalError(err error) error {
	return &Error{Kind: KindInternal, Message: msgInternal, Err: err}
}

// KindOf returns the kind of err, KindInternal for anything that is not an *Error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}
