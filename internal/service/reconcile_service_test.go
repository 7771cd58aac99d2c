package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"bingo-backend/internal/core/domain"
	"bingo-backend/internal/core/ports"
	"bingo-backend/internal/core/ports/mocks"
	"bingo-backend/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type reconcileTestDeps struct {
	svc     *ReconcileServiceImpl
	txRepo  *mocks.MockTransactionRepository
	gateway *mocks.MockPaymentGateway
	cache   *mocks.MockReconcileCache
	ctrl    *gomock.Controller
}

func setupReconcileService(t *testing.T) *reconcileTestDeps {
	ctrl := gomock.NewController(t)
	d := &reconcileTestDeps{
		txRepo:  mocks.NewMockTransactionRepository(ctrl),
		gateway: mocks.NewMockPaymentGateway(ctrl),
		cache:   mocks.NewMockReconcileCache(ctrl),
		ctrl:    ctrl,
	}
	d.svc = NewReconcileService(d.txRepo, d.gateway, d.cache, zerolog.Nop())
	return d
}

func pendingTxn(txRef string) *domain.Transaction {
	return &domain.Transaction{
		TxRef:     txRef,
		UserID:    "user-1",
		Type:      domain.TransactionTypeDeposit,
		Amount:    decimal.NewFromInt(100),
		Currency:  domain.Currency,
		Status:    domain.TransactionStatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

func TestReconcile_Success(t *testing.T) {
	d := setupReconcileService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	txRef := "bingo-ref-1"
	amount := decimal.NewFromInt(100)

	d.cache.EXPECT().Get(ctx, txRef).Return(nil, nil)
	d.txRepo.EXPECT().GetByTxRef(ctx, txRef).Return(pendingTxn(txRef), nil)
	d.gateway.EXPECT().Verify(ctx, txRef).Return(&ports.VerifyResult{
		Status: "success", Amount: amount, Currency: "ETB",
	}, nil)
	d.txRepo.EXPECT().CreditAndComplete(ctx, txRef, "user-1", amount, domain.PaymentMethodChapa).
		Return(decimal.NewFromInt(100), nil)
	d.cache.EXPECT().Set(ctx, txRef, gomock.Any(), reconcileTTL).Return(nil)

	result, err := d.svc.Reconcile(ctx, txRef)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusCompleted, result.Status)
	assert.True(t, result.NewBalance.Equal(decimal.NewFromInt(100)))
	assert.False(t, result.AlreadyCompleted)
}

func TestReconcile_CacheHitSkipsGateway(t *testing.T) {
	d := setupReconcileService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	txRef := "bingo-ref-1"

	cached, err := json.Marshal(&ports.ReconcileResult{
		TxRef:  txRef,
		Status: domain.TransactionStatusCompleted,
		Amount: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	d.cache.EXPECT().Get(ctx, txRef).Return(cached, nil)

	result, err := d.svc.Reconcile(ctx, txRef)
	require.NoError(t, err)
	assert.True(t, result.AlreadyCompleted)
	assert.Equal(t, txRef, result.TxRef)
}

func TestReconcile_DuplicateTriggerIsNoOp(t *testing.T) {
	d := setupReconcileService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	txRef := "bingo-ref-1"
	amount := decimal.NewFromInt(100)

	d.cache.EXPECT().Get(ctx, txRef).Return(nil, nil)
	d.txRepo.EXPECT().GetByTxRef(ctx, txRef).Return(pendingTxn(txRef), nil)
	d.gateway.EXPECT().Verify(ctx, txRef).Return(&ports.VerifyResult{
		Status: "success", Amount: amount, Currency: "ETB",
	}, nil)
	d.txRepo.EXPECT().CreditAndComplete(ctx, txRef, "user-1", amount, domain.PaymentMethodChapa).
		Return(decimal.Zero, ports.ErrAlreadyCompleted)

	result, err := d.svc.Reconcile(ctx, txRef)
	require.NoError(t, err)
	assert.True(t, result.AlreadyCompleted)
	assert.Equal(t, domain.TransactionStatusCompleted, result.Status)
}

func TestReconcile_VerificationFailureMarksFailed(t *testing.T) {
	d := setupReconcileService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	txRef := "bingo-ref-1"

	d.cache.EXPECT().Get(ctx, txRef).Return(nil, nil)
	d.txRepo.EXPECT().GetByTxRef(ctx, txRef).Return(pendingTxn(txRef), nil)
	d.gateway.EXPECT().Verify(ctx, txRef).Return(&ports.VerifyResult{
		Status: "failed", Amount: decimal.NewFromInt(100),
	}, nil)
	d.txRepo.EXPECT().MarkFailed(ctx, txRef).Return(nil)

	_, err := d.svc.Reconcile(ctx, txRef)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PAY_001", appErr.Code)
}

func TestReconcile_GatewayErrorPropagates(t *testing.T) {
	d := setupReconcileService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	txRef := "bingo-ref-1"

	d.cache.EXPECT().Get(ctx, txRef).Return(nil, nil)
	d.txRepo.EXPECT().GetByTxRef(ctx, txRef).Return(pendingTxn(txRef), nil)
	d.gateway.EXPECT().Verify(ctx, txRef).
		Return(nil, apperror.ErrGatewayAuth(errors.New("401")))

	_, err := d.svc.Reconcile(ctx, txRef)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "GW_001", appErr.Code)
}

func TestReconcile_UnknownTxRefWithMetadata(t *testing.T) {
	d := setupReconcileService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	txRef := "bingo-unknown"
	amount := decimal.NewFromInt(75)

	d.cache.EXPECT().Get(ctx, txRef).Return(nil, nil)
	d.txRepo.EXPECT().GetByTxRef(ctx, txRef).Return(nil, nil)
	d.gateway.EXPECT().Verify(ctx, txRef).Return(&ports.VerifyResult{
		Status: "success", Amount: amount, Currency: "ETB",
		Metadata: map[string]any{"user_id": "user-9"},
	}, nil)
	d.txRepo.EXPECT().CreditAndComplete(ctx, txRef, "user-9", amount, domain.PaymentMethodChapa).
		Return(decimal.NewFromInt(75), nil)
	d.cache.EXPECT().Set(ctx, txRef, gomock.Any(), reconcileTTL).Return(nil)

	result, err := d.svc.Reconcile(ctx, txRef)
	require.NoError(t, err)
	assert.True(t, result.NewBalance.Equal(decimal.NewFromInt(75)))
}

func TestReconcile_UnknownTxRefWithoutIdentity(t *testing.T) {
	d := setupReconcileService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	txRef := "bingo-unknown"

	d.cache.EXPECT().Get(ctx, txRef).Return(nil, nil)
	d.txRepo.EXPECT().GetByTxRef(ctx, txRef).Return(nil, nil)
	d.gateway.EXPECT().Verify(ctx, txRef).Return(&ports.VerifyResult{
		Status: "success", Amount: decimal.NewFromInt(75),
	}, nil)

	_, err := d.svc.Reconcile(ctx, txRef)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "TXN_001", appErr.Code)
}

func TestReconcile_InvalidAmount(t *testing.T) {
	d := setupReconcileService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	txRef := "bingo-unknown"

	d.cache.EXPECT().Get(ctx, txRef).Return(nil, nil)
	d.txRepo.EXPECT().GetByTxRef(ctx, txRef).Return(nil, nil)
	d.gateway.EXPECT().Verify(ctx, txRef).Return(&ports.VerifyResult{
		Status: "success", Amount: decimal.Zero,
		Metadata: map[string]any{"user_id": "user-9"},
	}, nil)

	_, err := d.svc.Reconcile(ctx, txRef)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PAY_002", appErr.Code)
}

func TestReconcile_InvalidAmountWithLocalRecord(t *testing.T) {
	d := setupReconcileService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	txRef := "bingo-ref-1"

	// A local pending record names 500 ETB, but the gateway verified no
	// positive amount. The local figure must never be credited in its place.
	local := pendingTxn(txRef)
	local.Amount = decimal.NewFromInt(500)

	d.cache.EXPECT().Get(ctx, txRef).Return(nil, nil)
	d.txRepo.EXPECT().GetByTxRef(ctx, txRef).Return(local, nil)
	d.gateway.EXPECT().Verify(ctx, txRef).Return(&ports.VerifyResult{
		Status: "success", Amount: decimal.Zero, Currency: "ETB",
		Metadata: map[string]any{"user_id": "user-1"},
	}, nil)

	_, err := d.svc.Reconcile(ctx, txRef)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PAY_002", appErr.Code)
}

func TestReconcile_UserMissing(t *testing.T) {
	d := setupReconcileService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	txRef := "bingo-ref-1"
	amount := decimal.NewFromInt(100)

	d.cache.EXPECT().Get(ctx, txRef).Return(nil, nil)
	d.txRepo.EXPECT().GetByTxRef(ctx, txRef).Return(pendingTxn(txRef), nil)
	d.gateway.EXPECT().Verify(ctx, txRef).Return(&ports.VerifyResult{
		Status: "success", Amount: amount,
	}, nil)
	d.txRepo.EXPECT().CreditAndComplete(ctx, txRef, "user-1", amount, domain.PaymentMethodChapa).
		Return(decimal.Zero, ports.ErrUserMissing)

	_, err := d.svc.Reconcile(ctx, txRef)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "USER_001", appErr.Code)
}

func TestReconcile_CacheWriteFailureDoesNotFail(t *testing.T) {
	d := setupReconcileService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	txRef := "bingo-ref-1"
	amount := decimal.NewFromInt(100)

	d.cache.EXPECT().Get(ctx, txRef).Return(nil, nil)
	d.txRepo.EXPECT().GetByTxRef(ctx, txRef).Return(pendingTxn(txRef), nil)
	d.gateway.EXPECT().Verify(ctx, txRef).Return(&ports.VerifyResult{
		Status: "success", Amount: amount,
	}, nil)
	d.txRepo.EXPECT().CreditAndComplete(ctx, txRef, "user-1", amount, domain.PaymentMethodChapa).
		Return(decimal.NewFromInt(100), nil)
	d.cache.EXPECT().Set(ctx, txRef, gomock.Any(), reconcileTTL).
		Return(errors.New("redis down"))

	result, err := d.svc.Reconcile(ctx, txRef)
	require.NoError(t, err)
	assert.False(t, result.AlreadyCompleted)
}

func TestReconcile_EmptyTxRef(t *testing.T) {
	d := setupReconcileService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.Reconcile(context.Background(), "")

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VAL_001", appErr.Code)
}

func TestVerifyOnly_ReadOnly(t *testing.T) {
	d := setupReconcileService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	txRef := "bingo-ref-1"

	d.gateway.EXPECT().Verify(ctx, txRef).Return(&ports.VerifyResult{
		Status: "success", Amount: decimal.NewFromInt(100),
	}, nil)

	result, err := d.svc.VerifyOnly(ctx, txRef)
	require.NoError(t, err)
	assert.True(t, result.Succeeded())
}
