package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for common cases.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrDuplicateUser       = errors.New("duplicate user")
	ErrInvalidToken        = errors.New("invalid token")
	ErrUnknownUser         = errors.New("unknown user")
	ErrStoreFailure        = errors.New("store failure")
	ErrInternal            = errors.New("internal error")
)

// AppError represents a structured application error with HTTP status mapping.
// Message is the human-readable detail returned to clients.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// ConstraintViolation creates a 400 error for a password that fails the
// composition policy. detail is the rule message shown to the client.
func ConstraintViolation(detail string) *AppError {
	return &AppError{
		Code:    "CONSTRAINT_VIOLATION",
		Message: detail,
		Status:  http.StatusBadRequest,
		Err:     ErrConstraintViolation,
	}
}

// DuplicateUser creates a 400 error for an email that is already registered.
func DuplicateUser(email string) *AppError {
	return &AppError{
		Code:    "DUPLICATE_USER",
		Message: "There is already a user with the email " + email,
		Status:  http.StatusBadRequest,
		Err:     ErrDuplicateUser,
	}
}

// InvalidToken creates a 400 error for a malformed, expired or badly signed token.
func InvalidToken() *AppError {
	return &AppError{
		Code:    "INVALID_TOKEN",
		Message: "Invalid or expired token",
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidToken,
	}
}

// UnknownUser creates a 400 error for a token subject with no stored account.
func UnknownUser() *AppError {
	return &AppError{
		Code:    "UNKNOWN_USER",
		Message: "Username not found",
		Status:  http.StatusBadRequest,
		Err:     ErrUnknownUser,
	}
}

// StoreFailure creates a 500 error wrapping a backing-store failure. The
// cause is kept for logging but never shown to clients.
func StoreFailure(err error) *AppError {
	return &AppError{
		Code:    "STORE_FAILURE",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     fmt.Errorf("%w: %w", ErrStoreFailure, err),
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrConstraintViolation),
		errors.Is(err, ErrDuplicateUser),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrUnknownUser):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
