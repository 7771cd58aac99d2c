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

// ---- Validation & Authentication ----

// Validation returns a client error for missing or malformed request fields.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

func ErrUnauthenticated() *AppError {
	return New("AUTH_001", "Missing, invalid or expired token", http.StatusUnauthorized)
}

func ErrForbidden() *AppError {
	return New("AUTH_002", "Not allowed for this user", http.StatusForbidden)
}

// ---- Payment Gateway (GW) ----

func ErrGatewayAuth(err error) *AppError {
	return Wrap("GW_001", "Payment gateway rejected our credentials", http.StatusBadGateway, err)
}

func ErrGatewayRequest(err error) *AppError {
	return Wrap("GW_002", "Payment gateway unreachable or returned a malformed response", http.StatusBadGateway, err)
}

func ErrGatewayBusiness(message string) *AppError {
	return New("GW_003", fmt.Sprintf("Payment gateway error: %s", message), http.StatusBadGateway)
}

// ---- Payment Business Logic (PAY) ----

func ErrPaymentNotVerified() *AppError {
	return New("PAY_001", "Payment verification failed", http.StatusBadRequest)
}

func ErrInvalidPaymentData() *AppError {
	return New("PAY_002", "Invalid payment data", http.StatusBadRequest)
}

func ErrTransactionNotFound() *AppError {
	return New("TXN_001", "Transaction not found", http.StatusNotFound)
}

func ErrUserNotFound() *AppError {
	return New("USER_001", "User not found", http.StatusNotFound)
}

// ---- Localization (LANG) ----

func ErrUnsupportedLanguage(lang string) *AppError {
	return New("LANG_001", fmt.Sprintf("Language '%s' not supported", lang), http.StatusBadRequest)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}
