package ports

import (
	"context"
	"time"

	"bingo-backend/internal/core/domain"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

// --- Gateway Port ---

// PaymentGateway wraps the external payment provider's initialize and verify
// operations. Pure request/response; no internal retries — the caller owns
// retry policy. Timeouts come from the injected HTTP client and surface as
// GatewayRequestError.
type PaymentGateway interface {
	// Initialize creates a checkout session and returns the hosted checkout URL.
	Initialize(ctx context.Context, req InitializeRequest) (string, error)

	// Verify fetches the provider's view of a transaction. A well-formed
	// response with a non-success status is a result, not an error, so the
	// caller can distinguish "could not reach gateway" from "gateway says the
	// payment did not succeed".
	Verify(ctx context.Context, txRef string) (*VerifyResult, error)
}

// InitializeRequest holds the fields sent to the provider's initialize endpoint.
type InitializeRequest struct {
	Amount      decimal.Decimal
	Currency    string
	Email       string
	FirstName   string
	LastName    string
	TxRef       string
	CallbackURL string
	ReturnURL   string
	Title       string
	Description string
	Metadata    map[string]string
}

// VerifyResult is the provider's verification outcome.
type VerifyResult struct {
	Status   string
	Amount   decimal.Decimal
	Currency string
	Metadata map[string]any
}

// Succeeded reports whether the provider confirmed the payment.
func (r *VerifyResult) Succeeded() bool {
	return r != nil && r.Status == "success"
}

// MetadataUserID extracts the user identity the deposit flow embedded in the
// checkout metadata. Returns "" when absent or not a string.
func (r *VerifyResult) MetadataUserID() string {
	if r == nil || r.Metadata == nil {
		return ""
	}
	if uid, ok := r.Metadata["user_id"].(string); ok {
		return uid
	}
	return ""
}

// --- Identity Port ---

// Identity is the verified caller extracted from a bearer token.
type Identity struct {
	UID   string
	Email string
}

// TokenVerifier validates a bearer token issued by the identity provider and
// yields the opaque user identifier.
type TokenVerifier interface {
	Verify(token string) (*Identity, error)
}

// --- Cache Port ---

// ReconcileCache is a best-effort fast path for completed reconciliations.
// A hit short-circuits duplicate triggers without a gateway round trip; the
// database's conditional update remains the correctness mechanism.
type ReconcileCache interface {
	Get(ctx context.Context, txRef string) ([]byte, error) // nil, nil on miss
	Set(ctx context.Context, txRef string, value []byte, ttl time.Duration) error
}

// --- Service Ports (Business Logic) ---

// WalletService defines deposit initiation and transaction history.
type WalletService interface {
	Deposit(ctx context.Context, req DepositRequest) (*DepositResult, error)
	History(ctx context.Context, params TransactionListParams) (*HistoryPage, error)
}

// DepositRequest holds validated input for starting a deposit.
type DepositRequest struct {
	UserID    string
	Amount    decimal.Decimal
	Email     string
	FirstName string
	LastName  string
	Phone     string
}

// DepositResult is returned once the pending record exists and the gateway
// session is created.
type DepositResult struct {
	TxRef       string
	CheckoutURL string
	Transaction *domain.Transaction
}

// HistoryPage is one page of a user's transactions, newest first.
type HistoryPage struct {
	Transactions []domain.Transaction
	NextCursor   string
}

// ReconcileService drives the payment reconciliation workflow. Both the
// authenticated verify endpoint and the unauthenticated provider callback
// call Reconcile, possibly concurrently for the same tx_ref.
type ReconcileService interface {
	// Reconcile verifies the payment with the gateway and credits the wallet
	// at most once per tx_ref.
	Reconcile(ctx context.Context, txRef string) (*ReconcileResult, error)

	// VerifyOnly queries the gateway without any crediting side effect.
	VerifyOnly(ctx context.Context, txRef string) (*VerifyResult, error)
}

// ReconcileResult reports the outcome of one reconciliation trigger.
type ReconcileResult struct {
	TxRef            string
	Status           domain.TransactionStatus
	Amount           decimal.Decimal
	NewBalance       decimal.Decimal
	AlreadyCompleted bool // true when an earlier trigger applied the credit
}
