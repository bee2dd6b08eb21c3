package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Match with errors.Is.
var (
	ErrValidation           = errors.New("validation error")
	ErrNotFound             = errors.New("not found")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrInsufficientPayment  = errors.New("insufficient payment")
	ErrDuplicateKey         = errors.New("duplicate key")
	ErrLastAdmin            = errors.New("last admin")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrAccountDisabled      = errors.New("account disabled")
	ErrSessionExpired       = errors.New("session expired")
	ErrForbidden            = errors.New("forbidden")
	ErrConfirmationRequired = errors.New("confirmation required")
)

// Error is a domain failure with a user facing message
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// New creates a domain error of the given kind
func New(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation is shorthand for an ErrValidation failure
func Validation(format string, args ...any) *Error {
	return New(ErrValidation, format, args...)
}

// NotFound is shorthand for an ErrNotFound failure
func NotFound(format string, args ...any) *Error {
	return New(ErrNotFound, format, args...)
}

// HTTPStatus maps an error to the status code the delivery layer should answer with
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrInsufficientStock),
		errors.Is(err, ErrInsufficientPayment):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateKey),
		errors.Is(err, ErrLastAdmin),
		errors.Is(err, ErrConfirmationRequired):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrAccountDisabled),
		errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
