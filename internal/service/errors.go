package service

import (
	"errors"
	"fmt"

	"mqk-dashboard/internal/authz"
	"mqk-dashboard/pkg/validator"

	"gorm.io/gorm"
)

// Kind classifies a failure for the caller.
type Kind string

const (
	KindValidation Kind = "ValidationError"
	KindDuplicate  Kind = "DuplicateError"
	KindNotFound   Kind = "NotFoundError"
	KindDatabase   Kind = "DatabaseError"
	KindForbidden  Kind = "ForbiddenError"
	KindConflict   Kind = "ConflictError"

	// KindUnauthorized is produced by the transport layer only.
	KindUnauthorized Kind = "UnauthorizedError"
)

// GenericMessage is shown for any failure the caller cannot act on.
const GenericMessage = "something went wrong, please try again"

// Error is the single error type returned by service operations.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func ValidationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func DuplicateError(msg string) *Error {
	return &Error{Kind: KindDuplicate, Message: msg}
}

func NotFoundError(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func ConflictError(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func ForbiddenError() *Error {
	return &Error{Kind: KindForbidden, Message: authz.ErrForbidden.Error(), Err: authz.ErrForbidden}
}

func DatabaseError(err error) *Error {
	return &Error{Kind: KindDatabase, Message: GenericMessage, Err: err}
}

// KindOf classifies any error. Unknown errors are DatabaseError.
func KindOf(err error) Kind {
	var se *Error
	switch {
	case err == nil:
		return ""
	case errors.As(err, &se):
		return se.Kind
	case errors.Is(err, authz.ErrForbidden):
		return KindForbidden
	case errors.Is(err, gorm.ErrRecordNotFound):
		return KindNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return KindDuplicate
	default:
		return KindDatabase
	}
}

// validate runs struct validation and converts the first failure into a ValidationError.
func validate(req interface{}) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return ValidationError(validator.Message(errs))
	}
	return nil
}

// translate maps persistence errors into the service taxonomy. dupMsg is used
// when a unique constraint fires after the explicit existence check passed;
// an empty dupMsg falls back to GenericMessage.
func translate(err error, dupMsg string) error {
	var se *Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &se):
		return se
	case errors.Is(err, authz.ErrForbidden):
		return ForbiddenError()
	case errors.Is(err, gorm.ErrDuplicatedKey):
		if dupMsg == "" {
			dupMsg = GenericMessage
		}
		return &Error{Kind: KindDuplicate, Message: dupMsg, Err: err}
	default:
		return DatabaseError(err)
	}
}
