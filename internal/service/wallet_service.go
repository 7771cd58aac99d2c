package service

import (
	"context"
	"fmt"
	"time"

	"bingo-backend/config"
	"bingo-backend/internal/core/domain"
	"bingo-backend/internal/core/ports"
	"bingo-backend/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// WalletServiceImpl implements ports.WalletService.
type WalletServiceImpl struct {
	txRepo  ports.TransactionRepository
	gateway ports.PaymentGateway
	cfg     config.ChapaConfig
	log     zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	txRepo ports.TransactionRepository,
	gateway ports.PaymentGateway,
	cfg config.ChapaConfig,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		txRepo:  txRepo,
		gateway: gateway,
		cfg:     cfg,
		log:     log,
	}
}

// Deposit records a pending transaction and asks the gateway for a hosted
// checkout URL. The pending record is written before first contact with the
// gateway, so a later callback always finds a local row to reconcile against.
func (s *WalletServiceImpl) Deposit(ctx context.Context, req ports.DepositRequest) (*ports.DepositResult, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperror.Validation("amount must be greater than zero")
	}

	txn := &domain.Transaction{
		TxRef:         domain.NewTxRef(),
		UserID:        req.UserID,
		Type:          domain.TransactionTypeDeposit,
		Amount:        req.Amount,
		Currency:      domain.Currency,
		Status:        domain.TransactionStatusPending,
		PaymentMethod: domain.PaymentMethodChapa,
		Email:         req.Email,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Phone:         req.Phone,
		Description:   "Wallet deposit via Chapa",
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.txRepo.CreatePending(ctx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create pending transaction: %w", err))
	}

	checkoutURL, err := s.gateway.Initialize(ctx, ports.InitializeRequest{
		Amount:      req.Amount,
		Currency:    domain.Currency,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		TxRef:       txn.TxRef,
		CallbackURL: s.cfg.CallbackURL(),
		ReturnURL:   s.cfg.ReturnURL(),
		Title:       "Bingo Deposit",
		Description: txn.Description,
		Metadata:    map[string]string{"user_id": req.UserID},
	})
	if err != nil {
		if ferr := s.txRepo.MarkFailed(ctx, txn.TxRef); ferr != nil {
			s.log.Error().Err(ferr).Str("tx_ref", txn.TxRef).Msg("failed to mark transaction failed after gateway error")
		}
		return nil, err
	}

	s.log.Info().
		Str("tx_ref", txn.TxRef).
		Str("user_id", req.UserID).
		Str("amount", req.Amount.String()).
		Msg("deposit initialized")

	return &ports.DepositResult{
		TxRef:       txn.TxRef,
		CheckoutURL: checkoutURL,
		Transaction: txn,
	}, nil
}

// History returns a page of the user's transactions, newest first.
func (s *WalletServiceImpl) History(ctx context.Context, params ports.TransactionListParams) (*ports.HistoryPage, error) {
	if params.Limit <= 0 {
		params.Limit = 20
	}
	if params.Limit > 100 {
		params.Limit = 100
	}

	txns, next, err := s.txRepo.ListForUser(ctx, params)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}

	return &ports.HistoryPage{
		Transactions: txns,
		NextCursor:   next,
	}, nil
}
