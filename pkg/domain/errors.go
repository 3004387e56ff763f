package domain

import "errors"

// Common domain errors
var (
	// ErrNotFound is returned when a requested resource is not found
	ErrNotFound = errors.New("resource not found")
	// ErrAlreadyExists is returned when trying to create a resource that already exists
	ErrAlreadyExists = errors.New("resource already exists")
	// ErrValidation is returned when input validation fails
	ErrValidation = errors.New("validation error")
	// ErrUnauthorized is returned when the caller is not authenticated
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when a user is not allowed to perform an action
	ErrForbidden = errors.New("forbidden")
	// ErrInsufficientFunds is returned when a debit would take a balance below zero
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrPersistence is returned when the store fails for reasons unrelated to the request
	ErrPersistence = errors.New("persistence error")
)

// Error attaches one of the common domain errors (its Kind) to a more specific error.
// errors.Is matches both.
type Error struct {
	Kind error
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() []error { return []error{e.Kind, e.Err} }

// NewError returns an error with the given message classified as kind.
func NewError(kind error, msg string) error {
	return &Error{Kind: kind, Err: errors.New(msg)}
}

// Wrap classifies err as kind, keeping err's message.
func Wrap(kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// IsKnown reports whether err is classified as one of the common domain errors.
func IsKnown(err error) bool {
	for _, kind := range []error{
		ErrNotFound,
		ErrAlreadyExists,
		ErrValidation,
		ErrUnauthorized,
		ErrForbidden,
		ErrInsufficientFunds,
		ErrPersistence,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
