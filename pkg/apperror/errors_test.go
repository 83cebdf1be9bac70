package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New("ORD_001", "Order not found", http.StatusNotFound),
			expected: "[ORD_001] Order not found",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap("SYS_001", "DB error", http.StatusInternalServerError, fmt.Errorf("connection refused")),
			expected: "[SYS_001] DB error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap("SYS_001", "wrapped", http.StatusInternalServerError, inner)

	assert.True(t, errors.Is(appErr, inner))
}

func TestAppError_IsNilUnwrap(t *testing.T) {
	appErr := New("ORD_001", "test", http.StatusNotFound)
	assert.Nil(t, appErr.Unwrap())
}

func TestErrorCatalog(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"OrderNotFound", ErrOrderNotFound(), "ORD_001", 404},
		{"OrderAlreadyResolved", ErrOrderAlreadyResolved("CONFIRMED"), "ORD_002", 409},
		{"InvalidDuration", ErrInvalidDuration(), "ORD_003", 400},
		{"MissingTxnHash", ErrMissingTxnHash(), "ORD_004", 422},
		{"InvalidTxnHash", ErrInvalidTxnHash(), "PAY_001", 400},
		{"UnsupportedNetwork", ErrUnsupportedNetwork("solana"), "PAY_002", 400},
		{"VerificationPending", ErrVerificationPending(), "PAY_003", 409},
		{"InvalidCredentials", ErrInvalidCredentials(), "AUTH_001", 401},
		{"InvalidToken", ErrInvalidToken(), "AUTH_002", 401},
		{"Validation", Validation("bad input"), "VAL_001", 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestErrOrderAlreadyResolved_Message(t *testing.T) {
	assert.Contains(t, ErrOrderAlreadyResolved("FAILED").Message, "FAILED")
}

func TestInternalError_WrapsCause(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := InternalError(cause)

	assert.Equal(t, "SYS_001", err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus)
	assert.True(t, errors.Is(err, cause))
}
