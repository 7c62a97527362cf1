package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Sentinel error identity ---

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound, ErrInvalidInput, ErrConstraintViolation, ErrDuplicateUser,
		ErrInvalidToken, ErrUnknownUser, ErrStoreFailure, ErrInternal,
	}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j],
				"sentinels %d and %d should be distinct", i, j)
		}
	}
}

// --- AppError behavior ---

func TestAppError_ErrorString_WithWrappedError(t *testing.T) {
	inner := fmt.Errorf("db connection lost")
	appErr := &AppError{Code: "INTERNAL_ERROR", Message: "something broke", Err: inner}
	assert.Contains(t, appErr.Error(), "INTERNAL_ERROR")
	assert.Contains(t, appErr.Error(), "something broke")
	assert.Contains(t, appErr.Error(), "db connection lost")
}

func TestAppError_ErrorString_WithoutWrappedError(t *testing.T) {
	appErr := &AppError{Code: "UNKNOWN_USER", Message: "Username not found"}
	assert.Equal(t, "UNKNOWN_USER: Username not found", appErr.Error())
}

func TestAppError_Unwrap_Nil(t *testing.T) {
	appErr := &AppError{Code: "TEST", Message: "test"}
	assert.Nil(t, appErr.Unwrap())
}

// --- Constructor functions ---

func TestConstraintViolation(t *testing.T) {
	err := ConstraintViolation("Password must have a capital letter")
	require.NotNil(t, err)
	assert.Equal(t, "CONSTRAINT_VIOLATION", err.Code)
	assert.Equal(t, "Password must have a capital letter", err.Message)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.True(t, errors.Is(err, ErrConstraintViolation))
}

func TestDuplicateUser(t *testing.T) {
	err := DuplicateUser("charlie_01@correo.com")
	require.NotNil(t, err)
	assert.Equal(t, "DUPLICATE_USER", err.Code)
	assert.Equal(t, "There is already a user with the email charlie_01@correo.com", err.Message)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.True(t, errors.Is(err, ErrDuplicateUser))
}

func TestInvalidToken(t *testing.T) {
	err := InvalidToken()
	assert.Equal(t, "INVALID_TOKEN", err.Code)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestUnknownUser(t *testing.T) {
	err := UnknownUser()
	assert.Equal(t, "Username not found", err.Message)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.True(t, errors.Is(err, ErrUnknownUser))
}

func TestStoreFailure_KeepsCause(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := StoreFailure(cause)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.True(t, errors.Is(err, ErrStoreFailure))
	assert.True(t, errors.Is(err, cause))
	assert.NotContains(t, err.Message, "connection reset")
}

func TestInvalidInput(t *testing.T) {
	err := InvalidInput("bad body")
	assert.Equal(t, "INVALID_INPUT", err.Code)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestNotFound(t *testing.T) {
	err := NotFound("user", "abc-123")
	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Contains(t, err.Message, "abc-123")
	assert.Equal(t, http.StatusNotFound, err.Status)
}

func TestInternal(t *testing.T) {
	inner := fmt.Errorf("segfault")
	err := Internal(inner)
	require.NotNil(t, err)
	assert.Equal(t, "INTERNAL_ERROR", err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Contains(t, err.Error(), "segfault")
}

// --- HTTPStatus ---

func TestHTTPStatus_AppError(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(DuplicateUser("a@b.c")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(StoreFailure(fmt.Errorf("x"))))
}

func TestHTTPStatus_SentinelErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrConstraintViolation, http.StatusBadRequest},
		{ErrDuplicateUser, http.StatusBadRequest},
		{ErrInvalidToken, http.StatusBadRequest},
		{ErrUnknownUser, http.StatusBadRequest},
		{ErrStoreFailure, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestHTTPStatus_WrappedSentinel(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", ErrDuplicateUser)
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(wrapped))
}

func TestHTTPStatus_UnknownError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(fmt.Errorf("unknown")))
}
