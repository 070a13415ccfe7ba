package directory

import (
	"errors"
	"fmt"
)

// Kind classifies the outcome of a failed directory operation.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindAuthentication
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindAuthentication:
		return "authentication"
	case KindPersistence:
		return "persistence"
	default:
		return "internal"
	}
}

// Error is returned by every Service operation that does not succeed.
// Message is safe to show to API callers; Err carries the underlying cause, if any.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the Kind carried by err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// Message returns the caller-facing message of err.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal server error"
}

var (
	ErrInvalidUserID         = &Error{Kind: KindValidation, Message: "ID must be greater than zero."}
	ErrInvalidID             = &Error{Kind: KindValidation, Message: "Invalid ID."}
	ErrInvalidEmail          = &Error{Kind: KindValidation, Message: "Email is not valid."}
	ErrEmailTooLong          = &Error{Kind: KindValidation, Message: "Email must be at most 150 characters."}
	ErrPasswordTooShort      = &Error{Kind: KindValidation, Message: "Password must be at least 6 characters."}
	ErrFirstNameTooLong      = &Error{Kind: KindValidation, Message: "First name must be at most 100 characters."}
	ErrLastNameTooLong       = &Error{Kind: KindValidation, Message: "Last name must be at most 100 characters."}
	ErrIDNumberTooLong       = &Error{Kind: KindValidation, Message: "Identification number must be at most 30 characters."}
	ErrUnknownIdentification = &Error{Kind: KindValidation, Message: "Identification type does not exist."}
	ErrUserNotFound          = &Error{Kind: KindNotFound, Message: "User not found."}
	ErrEmailTaken            = &Error{Kind: KindConflict, Message: "Email is already registered."}
	ErrInvalidCredentials    = &Error{Kind: KindAuthentication, Message: "Invalid email or password"}
)

func persistence(op string, err error) error {
	return &Error{Kind: KindPersistence, Message: "failed to " + op, Err: err}
}

func internal(op string, err error) error {
	return &Error{Kind: KindInternal, Message: "failed to " + op, Err: err}
}
