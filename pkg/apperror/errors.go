package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Orders (ORD) ----

func ErrOrderNotFound() *AppError {
	return New("ORD_001", "Order not found", http.StatusNotFound)
}

func ErrOrderAlreadyResolved(status string) *AppError {
	return New("ORD_002", fmt.Sprintf("Order already %s", status), http.StatusConflict)
}

func ErrInvalidDuration() *AppError {
	return New("ORD_003", "Duration must be a multiple of 48h or exactly one week", http.StatusBadRequest)
}

func ErrMissingTxnHash() *AppError {
	return New("ORD_004", "Order has no transaction hash", http.StatusUnprocessableEntity)
}

// ---- Payment verification (PAY) ----

func ErrInvalidTxnHash() *AppError {
	return New("PAY_001", "Transaction hash must be 0x followed by 64 hex characters", http.StatusBadRequest)
}

func ErrUnsupportedNetwork(network string) *AppError {
	return New("PAY_002", fmt.Sprintf("Unsupported network: %s", network), http.StatusBadRequest)
}

func ErrVerificationPending() *AppError {
	return New("PAY_003", "Payment not yet verifiable on chain", http.StatusConflict)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_002", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

func ErrChainUnavailable(err error) *AppError {
	return Wrap("SYS_002", "Chain RPC unavailable", http.StatusServiceUnavailable, err)
}

// Validation returns a generic request validation error.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}
