package domain

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnknownKind     = errors.New("unknown query kind")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrInactive        = errors.New("key inactive")
	ErrConflict        = errors.New("conflict")
	ErrInvalidResponse = errors.New("invalid provider response")
)

// InputError is an InputInvalid failure with a message meant for the caller.
// It unwraps to ErrInvalidInput or ErrUnknownKind.
type InputError struct {
	Message string
	Kind    error
}

func (e *InputError) Error() string {
	return e.Message
}

func (e *InputError) Unwrap() error {
	return e.Kind
}

func NewInputError(kind error, message string) error {
	return &InputError{Message: message, Kind: kind}
}
