package ports

import (
	"context"
	"errors"

	"bingo-backend/internal/core/domain"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

// ErrAlreadyCompleted is returned by CreditAndComplete when the transaction
// already reached the completed state. Callers treat it as a success no-op:
// the credit was applied exactly once by an earlier trigger.
var ErrAlreadyCompleted = errors.New("transaction already completed")

// ErrUserMissing is returned when a balance credit targets a user record
// that does not exist. The whole batch rolls back.
var ErrUserMissing = errors.New("user record not found")

// TransactionRepository defines persistence operations for deposit transactions.
type TransactionRepository interface {
	// CreatePending writes a new pending transaction. The tx_ref must be
	// unique; the caller allocates it via domain.NewTxRef.
	CreatePending(ctx context.Context, txn *domain.Transaction) error

	// GetByTxRef fetches a transaction by reference. Returns nil, nil when absent.
	GetByTxRef(ctx context.Context, txRef string) (*domain.Transaction, error)

	// CreditAndComplete marks the transaction completed and credits the user's
	// wallet balance in one atomic, all-or-nothing write. The status update is
	// conditional on the prior state being pending, which serializes racing
	// reconciliation triggers: the loser observes ErrAlreadyCompleted and must
	// not credit again. When no record exists for txRef, a completed record is
	// inserted (permissive mode for gateway-initiated callbacks that carry the
	// user identity in their payload).
	//
	// Returns the post-credit balance. Fails with ErrUserMissing when the user
	// record is absent; nothing is written in that case.
	CreditAndComplete(ctx context.Context, txRef, userID string, amount decimal.Decimal, method string) (decimal.Decimal, error)

	// MarkFailed moves a pending transaction to failed. No-op when the
	// transaction is absent or already terminal.
	MarkFailed(ctx context.Context, txRef string) error

	// ListForUser returns the user's transactions newest first, plus a cursor
	// for the next page ("" when exhausted).
	ListForUser(ctx context.Context, params TransactionListParams) ([]domain.Transaction, string, error)
}

// TransactionListParams holds filter + pagination for listing transactions.
// Cursor, when set, takes precedence over Offset.
type TransactionListParams struct {
	UserID string
	Limit  int
	Offset int
	Cursor string
}

// UserRepository defines persistence operations for user records. The wallet
// balance field is deliberately absent here: it is written only inside
// TransactionRepository.CreditAndComplete.
type UserRepository interface {
	// GetByID fetches a user record. Returns ErrUserMissing when absent.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// UpdateEmail sets the user's email address, creating no other fields.
	UpdateEmail(ctx context.Context, id, email string) error
}
