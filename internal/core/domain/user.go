package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is the account record owned by the identity subsystem. Only the
// wallet balance field is mutated here, and only inside the atomic
// credit-and-complete batch.
type User struct {
	ID            string          `json:"id"` // uid issued by the identity provider
	Email         string          `json:"email,omitempty"`
	DisplayName   string          `json:"display_name,omitempty"`
	WalletBalance decimal.Decimal `json:"wallet_balance"`
	LastUpdated   time.Time       `json:"last_updated"`
}
