package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Currency is the only currency this backend accepts deposits in.
const Currency = "ETB"

// PaymentMethodChapa tags transactions settled through the Chapa gateway.
const PaymentMethodChapa = "chapa"

// TransactionType represents the kind of money movement.
type TransactionType string

const (
	TransactionTypeDeposit TransactionType = "deposit"
)

// TransactionStatus represents the lifecycle state of a transaction.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Transaction is a wallet deposit record. A transaction is created pending
// when the payer is sent to checkout and moves to completed at most once,
// by whichever reconciliation trigger wins. Completed is terminal.
type Transaction struct {
	TxRef         string            `json:"tx_ref"`
	UserID        string            `json:"user_id"`
	Type          TransactionType   `json:"type"`
	Amount        decimal.Decimal   `json:"amount"`
	Currency      string            `json:"currency"`
	Status        TransactionStatus `json:"status"`
	PaymentMethod string            `json:"payment_method"`
	Email         string            `json:"email,omitempty"`
	FirstName     string            `json:"first_name,omitempty"`
	LastName      string            `json:"last_name,omitempty"`
	Phone         string            `json:"phone,omitempty"`
	Description   string            `json:"description,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	CompletedAt   *time.Time        `json:"completed_at,omitempty"`
}

// IsTerminal returns true if the transaction is in a final state.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusCompleted ||
		t.Status == TransactionStatusFailed
}

// NewTxRef allocates a new globally unique transaction reference.
// The "bingo-" prefix identifies our references on the gateway side.
func NewTxRef() string {
	return "bingo-" + uuid.New().String()
}
