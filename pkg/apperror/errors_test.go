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
			appErr:   New("PAY_001", "Payment verification failed", http.StatusBadRequest),
			expected: "[PAY_001] Payment verification failed",
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
	appErr := New("PAY_001", "test", http.StatusBadRequest)
	assert.Nil(t, appErr.Unwrap())
}

func TestGatewayErrors(t *testing.T) {
	inner := fmt.Errorf("dial tcp: i/o timeout")

	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"GatewayAuth", ErrGatewayAuth(inner), "GW_001", 502},
		{"GatewayRequest", ErrGatewayRequest(inner), "GW_002", 502},
		{"GatewayBusiness", ErrGatewayBusiness("Invalid currency"), "GW_003", 502},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}

	assert.True(t, errors.Is(ErrGatewayRequest(inner), inner))
	assert.Contains(t, ErrGatewayBusiness("Invalid currency").Message, "Invalid currency")
}

func TestPaymentErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"PaymentNotVerified", ErrPaymentNotVerified(), "PAY_001", 400},
		{"InvalidPaymentData", ErrInvalidPaymentData(), "PAY_002", 400},
		{"TransactionNotFound", ErrTransactionNotFound(), "TXN_001", 404},
		{"UserNotFound", ErrUserNotFound(), "USER_001", 404},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestAuthAndValidationErrors(t *testing.T) {
	assert.Equal(t, "AUTH_001", ErrUnauthenticated().Code)
	assert.Equal(t, 401, ErrUnauthenticated().HTTPStatus)

	assert.Equal(t, "AUTH_002", ErrForbidden().Code)
	assert.Equal(t, 403, ErrForbidden().HTTPStatus)

	valErr := Validation("amount is required")
	assert.Equal(t, "VAL_001", valErr.Code)
	assert.Equal(t, 400, valErr.HTTPStatus)
	assert.Equal(t, "amount is required", valErr.Message)
}

func TestLanguageError(t *testing.T) {
	err := ErrUnsupportedLanguage("fr")
	assert.Equal(t, "LANG_001", err.Code)
	assert.Equal(t, 400, err.HTTPStatus)
	assert.Contains(t, err.Message, "fr")
}

func TestRateLimitError(t *testing.T) {
	err := ErrRateLimitExceeded()
	assert.Equal(t, "RATE_001", err.Code)
	assert.Equal(t, 429, err.HTTPStatus)
}

func TestInternalError(t *testing.T) {
	inner := fmt.Errorf("pg: connection closed")
	err := InternalError(inner)
	assert.Equal(t, "SYS_001", err.Code)
	assert.Equal(t, 500, err.HTTPStatus)
	assert.True(t, errors.Is(err, inner))
}
