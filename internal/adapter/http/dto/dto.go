package dto

import (
	"time"

	"bingo-backend/internal/core/domain"

	"github.com/shopspring/decimal"
)

// DepositRequest is the request body for starting a wallet deposit.
type DepositRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Email     string          `json:"email" binding:"omitempty,email"`
	FirstName string          `json:"first_name" binding:"omitempty,max=100"`
	LastName  string          `json:"last_name" binding:"omitempty,max=100"`
	Phone     string          `json:"phone" binding:"omitempty,max=20"`
}

// DepositResponse is the response body for a started deposit.
type DepositResponse struct {
	TxRef       string `json:"tx_ref"`
	CheckoutURL string `json:"checkout_url"`
	Status      string `json:"payment_status"`
}

// VerifyRequest is the request body for verify-and-update.
type VerifyRequest struct {
	TxRef string `json:"tx_ref" binding:"required,safe_id,max=100"`
}

// CallbackRequest is the provider callback payload. Chapa posts either
// trx_ref or tx_ref depending on the event shape.
type CallbackRequest struct {
	TrxRef string `json:"trx_ref"`
	TxRef  string `json:"tx_ref"`
	Status string `json:"status"`
}

// Ref returns whichever transaction reference the callback carried.
func (r CallbackRequest) Ref() string {
	if r.TrxRef != "" {
		return r.TrxRef
	}
	return r.TxRef
}

// ReconcileResponse is the response body for a reconciliation trigger.
type ReconcileResponse struct {
	TxRef            string          `json:"tx_ref"`
	Status           string          `json:"payment_status"`
	Amount           decimal.Decimal `json:"amount"`
	NewBalance       decimal.Decimal `json:"new_balance"`
	AlreadyCompleted bool            `json:"already_completed"`
}

// VerifyResponse is the response body for the read-only verify endpoint.
type VerifyResponse struct {
	TxRef    string          `json:"tx_ref"`
	Status   string          `json:"payment_status"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// TransactionResponse is one transaction in a history page.
type TransactionResponse struct {
	TxRef         string          `json:"tx_ref"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"payment_method"`
	Description   string          `json:"description"`
	CreatedAt     string          `json:"created_at"`
	CompletedAt   *string         `json:"completed_at,omitempty"`
}

// HistoryResponse is the response body for transaction history.
type HistoryResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextCursor   string                `json:"next_cursor,omitempty"`
}

// UpdateEmailRequest is the request body for updating the caller's email.
type UpdateEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// TranslatedTextRequest is the request body for a single-key lookup.
type TranslatedTextRequest struct {
	Key    string            `json:"key" binding:"required"`
	Params map[string]string `json:"params"`
}

// InitialsAvatarRequest is the request body for an initials avatar.
type InitialsAvatarRequest struct {
	Name   string `json:"name" binding:"required,max=100"`
	UserID string `json:"user_id" binding:"required,safe_id,max=100"`
}

// ToTransactionResponse maps a domain transaction to its API shape.
func ToTransactionResponse(t domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		TxRef:         t.TxRef,
		Type:          string(t.Type),
		Amount:        t.Amount,
		Currency:      t.Currency,
		Status:        string(t.Status),
		PaymentMethod: t.PaymentMethod,
		Description:   t.Description,
		CreatedAt:     t.CreatedAt.UTC().Format(time.RFC3339),
	}
	if t.CompletedAt != nil {
		s := t.CompletedAt.UTC().Format(time.RFC3339)
		resp.CompletedAt = &s
	}
	return resp
}
