package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bingo-backend/internal/core/domain"
	"bingo-backend/internal/core/ports"
	"bingo-backend/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const reconcileTTL = 24 * time.Hour

// ReconcileServiceImpl implements ports.ReconcileService. All verification
// triggers (gateway callback, client-initiated verify, manual check) funnel
// through Reconcile, which defers the at-most-once credit decision to the
// store's conditional status flip.
type ReconcileServiceImpl struct {
	txRepo  ports.TransactionRepository
	gateway ports.PaymentGateway
	cache   ports.ReconcileCache
	log     zerolog.Logger
}

// NewReconcileService creates a new ReconcileServiceImpl.
func NewReconcileService(
	txRepo ports.TransactionRepository,
	gateway ports.PaymentGateway,
	cache ports.ReconcileCache,
	log zerolog.Logger,
) *ReconcileServiceImpl {
	return &ReconcileServiceImpl{
		txRepo:  txRepo,
		gateway: gateway,
		cache:   cache,
		log:     log,
	}
}

// Reconcile verifies a transaction against the gateway and settles the wallet.
// Safe to call any number of times for the same tx_ref.
func (s *ReconcileServiceImpl) Reconcile(ctx context.Context, txRef string) (*ports.ReconcileResult, error) {
	if txRef == "" {
		return nil, apperror.Validation("tx_ref is required")
	}

	// Fast path: the outcome of an earlier successful reconciliation.
	if cached, err := s.cache.Get(ctx, txRef); err != nil {
		s.log.Warn().Err(err).Str("tx_ref", txRef).Msg("reconcile cache read failed, falling through to gateway")
	} else if cached != nil {
		var result ports.ReconcileResult
		if err := json.Unmarshal(cached, &result); err == nil {
			result.AlreadyCompleted = true
			return &result, nil
		}
	}

	local, err := s.txRepo.GetByTxRef(ctx, txRef)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load transaction: %w", err))
	}

	verification, err := s.gateway.Verify(ctx, txRef)
	if err != nil {
		return nil, err
	}

	if !verification.Succeeded() {
		if local != nil && local.Status == domain.TransactionStatusPending {
			if ferr := s.txRepo.MarkFailed(ctx, txRef); ferr != nil {
				s.log.Error().Err(ferr).Str("tx_ref", txRef).Msg("failed to mark transaction failed")
			}
		}
		return nil, apperror.ErrPaymentNotVerified()
	}

	userID, amount, err := s.resolveCredit(local, verification)
	if err != nil {
		return nil, err
	}

	newBalance, err := s.txRepo.CreditAndComplete(ctx, txRef, userID, amount, domain.PaymentMethodChapa)
	if err != nil {
		switch {
		case errors.Is(err, ports.ErrAlreadyCompleted):
			return &ports.ReconcileResult{
				TxRef:            txRef,
				Status:           domain.TransactionStatusCompleted,
				Amount:           amount,
				AlreadyCompleted: true,
			}, nil
		case errors.Is(err, ports.ErrUserMissing):
			return nil, apperror.ErrUserNotFound()
		default:
			return nil, apperror.InternalError(fmt.Errorf("credit wallet: %w", err))
		}
	}

	result := &ports.ReconcileResult{
		TxRef:      txRef,
		Status:     domain.TransactionStatusCompleted,
		Amount:     amount,
		NewBalance: newBalance,
	}

	// Best effort: a cache failure never undoes a settled credit.
	if payload, err := json.Marshal(result); err == nil {
		if err := s.cache.Set(ctx, txRef, payload, reconcileTTL); err != nil {
			s.log.Warn().Err(err).Str("tx_ref", txRef).Msg("reconcile cache write failed")
		}
	}

	s.log.Info().
		Str("tx_ref", txRef).
		Str("user_id", userID).
		Str("amount", amount.String()).
		Msg("transaction reconciled")

	return result, nil
}

// VerifyOnly reports the gateway's view of a transaction without touching the
// wallet or the ledger.
func (s *ReconcileServiceImpl) VerifyOnly(ctx context.Context, txRef string) (*ports.VerifyResult, error) {
	if txRef == "" {
		return nil, apperror.Validation("tx_ref is required")
	}
	return s.gateway.Verify(ctx, txRef)
}

// resolveCredit decides who gets credited and how much. The local pending
// record is the primary source; the gateway payload's metadata covers
// transactions this instance never initiated.
func (s *ReconcileServiceImpl) resolveCredit(local *domain.Transaction, v *ports.VerifyResult) (string, decimal.Decimal, error) {
	userID := ""
	if local != nil {
		userID = local.UserID
	}
	if userID == "" {
		userID = v.MetadataUserID()
	}
	if userID == "" {
		return "", decimal.Zero, apperror.ErrTransactionNotFound()
	}

	// Only the gateway-verified amount may be credited. A success payload
	// without a positive amount is rejected even when a local pending record
	// names one.
	if v.Amount.LessThanOrEqual(decimal.Zero) {
		return "", decimal.Zero, apperror.ErrInvalidPaymentData()
	}

	return userID, v.Amount, nil
}
