package handler

import (
	"strconv"

	"bingo-backend/internal/adapter/http/dto"
	"bingo-backend/internal/adapter/http/middleware"
	"bingo-backend/internal/core/ports"
	"bingo-backend/pkg/apperror"
	"bingo-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles deposit and history endpoints.
type WalletHandler struct {
	walletSvc ports.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

// Deposit handles POST /api/wallet/deposit.
func (h *WalletHandler) Deposit(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserID)
	if uid == "" {
		response.Error(c, apperror.ErrUnauthenticated())
		return
	}

	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	email := req.Email
	if email == "" {
		email = c.GetString(middleware.CtxUserEmail)
	}

	result, err := h.walletSvc.Deposit(c.Request.Context(), ports.DepositRequest{
		UserID:    uid,
		Amount:    req.Amount,
		Email:     email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.DepositResponse{
		TxRef:       result.TxRef,
		CheckoutURL: result.CheckoutURL,
		Status:      string(result.Transaction.Status),
	})
}

// History handles GET /api/payment/history.
func (h *WalletHandler) History(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserID)
	if uid == "" {
		response.Error(c, apperror.ErrUnauthenticated())
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	page, err := h.walletSvc.History(c.Request.Context(), ports.TransactionListParams{
		UserID: uid,
		Limit:  limit,
		Offset: offset,
		Cursor: c.Query("cursor"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.HistoryResponse{
		Transactions: make([]dto.TransactionResponse, 0, len(page.Transactions)),
		NextCursor:   page.NextCursor,
	}
	for _, t := range page.Transactions {
		resp.Transactions = append(resp.Transactions, dto.ToTransactionResponse(t))
	}

	response.OK(c, resp)
}
