package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bingo-backend/config"
	"bingo-backend/internal/adapter/http/middleware"
	"bingo-backend/internal/core/domain"
	"bingo-backend/internal/core/ports"
	"bingo-backend/internal/core/ports/mocks"
	"bingo-backend/internal/service"
	"bingo-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func newTestAppHandler(t *testing.T, userRepo ports.UserRepository) *AppHandler {
	t.Helper()
	translationSvc := service.NewTranslationService(config.TranslationsConfig{
		Dir:             t.TempDir(),
		DefaultLanguage: "en",
	}, zerolog.Nop())
	return NewAppHandler(userRepo, translationSvc, service.NewAvatarService())
}

func newAuthedContext(t *testing.T, method, path, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.CtxUserID, "user-1")
	c.Set(middleware.CtxUserEmail, "player@example.com")
	return c, w
}

// --- Wallet Handler Tests ---

func TestDeposit_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	mockWallet.EXPECT().Deposit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, req ports.DepositRequest) (*ports.DepositResult, error) {
			assert.Equal(t, "user-1", req.UserID)
			assert.True(t, req.Amount.Equal(decimal.NewFromInt(100)))
			assert.Equal(t, "player@example.com", req.Email)
			return &ports.DepositResult{
				TxRef:       "bingo-abc",
				CheckoutURL: "https://checkout.chapa.co/s1",
				Transaction: &domain.Transaction{Status: domain.TransactionStatusPending},
			}, nil
		})

	c, w := newAuthedContext(t, http.MethodPost, "/api/wallet/deposit", `{"amount":"100"}`)
	h.Deposit(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp["status"])
	data := resp["data"].(map[string]any)
	assert.Equal(t, "bingo-abc", data["tx_ref"])
	assert.Equal(t, "https://checkout.chapa.co/s1", data["checkout_url"])
	assert.Equal(t, "pending", data["payment_status"])
}

func TestDeposit_MissingBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewWalletHandler(mocks.NewMockWalletService(ctrl))

	c, w := newAuthedContext(t, http.MethodPost, "/api/wallet/deposit", `{}`)
	h.Deposit(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VAL_001")
}

func TestDeposit_Unauthenticated(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewWalletHandler(mocks.NewMockWalletService(ctrl))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/wallet/deposit", strings.NewReader(`{"amount":"100"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Deposit(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_001")
}

func TestDeposit_GatewayError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	mockWallet.EXPECT().Deposit(gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrGatewayAuth(errors.New("401")))

	c, w := newAuthedContext(t, http.MethodPost, "/api/wallet/deposit", `{"amount":"100"}`)
	h.Deposit(c)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "GW_001")
}

func TestHistory_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	mockWallet.EXPECT().History(gomock.Any(), ports.TransactionListParams{
		UserID: "user-1", Limit: 10, Offset: 0, Cursor: "",
	}).Return(&ports.HistoryPage{
		Transactions: []domain.Transaction{{
			TxRef:  "bingo-1",
			Type:   domain.TransactionTypeDeposit,
			Amount: decimal.NewFromInt(50),
			Status: domain.TransactionStatusCompleted,
		}},
		NextCursor: "token",
	}, nil)

	c, w := newAuthedContext(t, http.MethodGet, "/api/payment/history?limit=10", "")
	h.History(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]any)
	assert.Equal(t, "token", data["next_cursor"])
	txns := data["transactions"].([]any)
	require.Len(t, txns, 1)
}

// --- Payment Handler Tests ---

func TestVerifyAndUpdate_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReconcile := mocks.NewMockReconcileService(ctrl)
	h := NewPaymentHandler(mockReconcile, testLogger())

	mockReconcile.EXPECT().Reconcile(gomock.Any(), "bingo-abc").
		Return(&ports.ReconcileResult{
			TxRef:      "bingo-abc",
			Status:     domain.TransactionStatusCompleted,
			Amount:     decimal.NewFromInt(100),
			NewBalance: decimal.NewFromInt(100),
		}, nil)

	c, w := newAuthedContext(t, http.MethodPost, "/api/payment/verify-and-update", `{"tx_ref":"bingo-abc"}`)
	h.VerifyAndUpdate(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]any)
	assert.Equal(t, "completed", data["payment_status"])
	assert.Equal(t, false, data["already_completed"])
}

func TestVerifyAndUpdate_NotVerified(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReconcile := mocks.NewMockReconcileService(ctrl)
	h := NewPaymentHandler(mockReconcile, testLogger())

	mockReconcile.EXPECT().Reconcile(gomock.Any(), "bingo-abc").
		Return(nil, apperror.ErrPaymentNotVerified())

	c, w := newAuthedContext(t, http.MethodPost, "/api/payment/verify-and-update", `{"tx_ref":"bingo-abc"}`)
	h.VerifyAndUpdate(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "PAY_001")
}

func TestCallback_TrxRefField(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReconcile := mocks.NewMockReconcileService(ctrl)
	h := NewPaymentHandler(mockReconcile, testLogger())

	mockReconcile.EXPECT().Reconcile(gomock.Any(), "bingo-abc").
		Return(&ports.ReconcileResult{
			TxRef:            "bingo-abc",
			Status:           domain.TransactionStatusCompleted,
			Amount:           decimal.NewFromInt(100),
			AlreadyCompleted: true,
		}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/payment-callback",
		strings.NewReader(`{"trx_ref":"bingo-abc","status":"success"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Callback(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]any)
	assert.Equal(t, true, data["already_completed"])
}

func TestCallback_MissingRef(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewPaymentHandler(mocks.NewMockReconcileService(ctrl), testLogger())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/payment-callback", strings.NewReader(`{"status":"success"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Callback(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerify_ReadOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReconcile := mocks.NewMockReconcileService(ctrl)
	h := NewPaymentHandler(mockReconcile, testLogger())

	mockReconcile.EXPECT().VerifyOnly(gomock.Any(), "bingo-abc").
		Return(&ports.VerifyResult{
			Status: "success", Amount: decimal.NewFromInt(100), Currency: "ETB",
		}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/payment/verify/bingo-abc", nil)
	c.Params = gin.Params{{Key: "tx_ref", Value: "bingo-abc"}}

	h.Verify(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]any)
	assert.Equal(t, "success", data["payment_status"])
	assert.Equal(t, "ETB", data["currency"])
}

// --- App Handler Tests ---

func TestUpdateEmail_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	h := newTestAppHandler(t, mockUsers)

	mockUsers.EXPECT().UpdateEmail(gomock.Any(), "user-1", "new@example.com").Return(nil)

	c, w := newAuthedContext(t, http.MethodPost, "/api/user/update-email", `{"email":"new@example.com"}`)
	h.UpdateEmail(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateEmail_UserMissing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	h := newTestAppHandler(t, mockUsers)

	mockUsers.EXPECT().UpdateEmail(gomock.Any(), "user-1", "new@example.com").
		Return(ports.ErrUserMissing)

	c, w := newAuthedContext(t, http.MethodPost, "/api/user/update-email", `{"email":"new@example.com"}`)
	h.UpdateEmail(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "USER_001")
}

func TestUpdateEmail_InvalidEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := newTestAppHandler(t, mocks.NewMockUserRepository(ctrl))

	c, w := newAuthedContext(t, http.MethodPost, "/api/user/update-email", `{"email":"nope"}`)
	h.UpdateEmail(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConfig(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := newTestAppHandler(t, mocks.NewMockUserRepository(ctrl))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/config", nil)

	h.Config(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]any)
	features := data["features"].(map[string]any)
	assert.Equal(t, true, features["payments"])
	assert.Len(t, data["avatar_styles"].([]any), 10)
}

// --- Health Handler Tests ---

type fakeChecker struct {
	name string
	err  error
}

func (f fakeChecker) Ping(_ context.Context) error { return f.err }
func (f fakeChecker) Name() string                 { return f.name }

func TestHealthCheck_AllHealthy(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck(fakeChecker{name: "postgresql"}, fakeChecker{name: "redis"})(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
}

func TestHealthCheck_Degraded(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck(fakeChecker{name: "postgresql"}, fakeChecker{name: "redis", err: errors.New("down")})(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "degraded")
}
