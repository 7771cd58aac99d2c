package postgres

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"bingo-backend/internal/core/domain"
	"bingo-backend/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

const txColumns = `tx_ref, user_id, type, amount, currency, status, payment_method,
	email, first_name, last_name, phone, description, created_at, completed_at`

// CreatePending inserts a new pending transaction.
func (r *TransactionRepo) CreatePending(ctx context.Context, t *domain.Transaction) error {
	query := `INSERT INTO transactions (tx_ref, user_id, type, amount, currency, status, payment_method,
		email, first_name, last_name, phone, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.pool.Exec(ctx, query,
		t.TxRef, t.UserID, t.Type, t.Amount, t.Currency, t.Status, t.PaymentMethod,
		t.Email, t.FirstName, t.LastName, t.Phone, t.Description, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert pending transaction: %w", err)
	}
	return nil
}

// GetByTxRef fetches a transaction by reference. Returns nil, nil when absent.
func (r *TransactionRepo) GetByTxRef(ctx context.Context, txRef string) (*domain.Transaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE tx_ref = $1`, txColumns)
	return scanTransaction(r.pool.QueryRow(ctx, query, txRef))
}

// CreditAndComplete marks the transaction completed and credits the wallet
// balance in a single database transaction. The status flip is conditional on
// the prior state, so of two racing reconciliation triggers exactly one
// performs the credit; the other observes ports.ErrAlreadyCompleted.
//
// An unknown tx_ref inserts a completed record directly (callback-initiated
// deposits verified straight off the gateway payload).
func (r *TransactionRepo) CreditAndComplete(ctx context.Context, txRef, userID string, amount decimal.Decimal, method string) (decimal.Decimal, error) {
	dbTx, err := r.pool.Begin(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("begin credit tx: %w", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	now := time.Now().UTC()

	// Conditional upsert: the WHERE clause is what closes the duplicate-trigger
	// race. A row that is already completed is left untouched and reports zero
	// affected rows. A locally-failed record may still complete: the gateway
	// is authoritative about the payment outcome. The amount is overwritten
	// with the verified one so the completed row always matches the credit
	// (partial payments, fee-adjusted captures). Payer fields default to empty
	// rather than relying on column defaults.
	upsert := `INSERT INTO transactions (tx_ref, user_id, type, amount, currency, status, payment_method,
		email, first_name, last_name, phone, description, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, '', '', '', '', $8, $9, $9)
		ON CONFLICT (tx_ref) DO UPDATE
		SET status = $6, amount = EXCLUDED.amount, completed_at = $9
		WHERE transactions.status IN ($10, $11)`

	tag, err := dbTx.Exec(ctx, upsert,
		txRef, userID, domain.TransactionTypeDeposit, amount, domain.Currency,
		domain.TransactionStatusCompleted, method, "Wallet deposit via Chapa", now,
		domain.TransactionStatusPending, domain.TransactionStatusFailed,
	)
	if err != nil {
		return decimal.Zero, fmt.Errorf("complete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return decimal.Zero, ports.ErrAlreadyCompleted
	}

	credit := `UPDATE users SET wallet_balance = wallet_balance + $1, last_updated = $2
		WHERE id = $3 RETURNING wallet_balance`

	var newBalance decimal.Decimal
	if err := dbTx.QueryRow(ctx, credit, amount, now, userID).Scan(&newBalance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, ports.ErrUserMissing
		}
		return decimal.Zero, fmt.Errorf("credit wallet balance: %w", err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("commit credit tx: %w", err)
	}
	return newBalance, nil
}

// MarkFailed moves a pending transaction to failed. No-op when the record is
// absent or already terminal.
func (r *TransactionRepo) MarkFailed(ctx context.Context, txRef string) error {
	query := `UPDATE transactions SET status = $1 WHERE tx_ref = $2 AND status = $3`

	_, err := r.pool.Exec(ctx, query,
		domain.TransactionStatusFailed, txRef, domain.TransactionStatusPending,
	)
	if err != nil {
		return fmt.Errorf("mark transaction failed: %w", err)
	}
	return nil
}

// ListForUser returns the user's transactions newest first. A keyset cursor
// (created_at, tx_ref) gives stable pages under concurrent inserts; the
// offset form is kept for callers that page the legacy way.
func (r *TransactionRepo) ListForUser(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, string, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	var args []any
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE user_id = $1`, txColumns)
	args = append(args, params.UserID)

	if params.Cursor != "" {
		createdAt, txRef, err := decodeCursor(params.Cursor)
		if err != nil {
			return nil, "", fmt.Errorf("decode cursor: %w", err)
		}
		query += ` AND (created_at, tx_ref) < ($2, $3) ORDER BY created_at DESC, tx_ref DESC LIMIT $4`
		args = append(args, createdAt, txRef, limit)
	} else {
		query += ` ORDER BY created_at DESC, tx_ref DESC LIMIT $2 OFFSET $3`
		args = append(args, limit, params.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t := domain.Transaction{}
		err := rows.Scan(
			&t.TxRef, &t.UserID, &t.Type, &t.Amount, &t.Currency, &t.Status, &t.PaymentMethod,
			&t.Email, &t.FirstName, &t.LastName, &t.Phone, &t.Description,
			&t.CreatedAt, &t.CompletedAt,
		)
		if err != nil {
			return nil, "", fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("iterate transaction rows: %w", err)
	}

	nextCursor := ""
	if len(txns) == limit {
		last := txns[len(txns)-1]
		nextCursor = encodeCursor(last.CreatedAt, last.TxRef)
	}
	return txns, nextCursor, nil
}

// encodeCursor packs a (created_at, tx_ref) keyset position into an opaque token.
func encodeCursor(createdAt time.Time, txRef string) string {
	raw := strconv.FormatInt(createdAt.UnixNano(), 10) + "|" + txRef
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(token string) (time.Time, string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return time.Time{}, "", err
	}
	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 {
		return time.Time{}, "", fmt.Errorf("malformed cursor")
	}
	nanos, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("malformed cursor timestamp")
	}
	return time.Unix(0, nanos).UTC(), parts[1], nil
}

// scanTransaction is a helper to scan a single row into a Transaction.
func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := row.Scan(
		&t.TxRef, &t.UserID, &t.Type, &t.Amount, &t.Currency, &t.Status, &t.PaymentMethod,
		&t.Email, &t.FirstName, &t.LastName, &t.Phone, &t.Description,
		&t.CreatedAt, &t.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return t, nil
}
