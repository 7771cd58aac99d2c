package handler

import (
	"bingo-backend/internal/adapter/http/dto"
	"bingo-backend/internal/core/ports"
	"bingo-backend/pkg/apperror"
	"bingo-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// PaymentHandler handles reconciliation and verification endpoints.
type PaymentHandler struct {
	reconcileSvc ports.ReconcileService
	log          zerolog.Logger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(reconcileSvc ports.ReconcileService, log zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{reconcileSvc: reconcileSvc, log: log}
}

// VerifyAndUpdate handles POST /api/payment/verify-and-update. Clients call
// this after returning from checkout; it races the provider callback for the
// same tx_ref and either order produces exactly one credit.
func (h *PaymentHandler) VerifyAndUpdate(c *gin.Context) {
	var req dto.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.reconcileSvc.Reconcile(c.Request.Context(), req.TxRef)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toReconcileResponse(result))
}

// Callback handles POST /api/payment-callback from the payment provider.
// The payload is untrusted: the tx_ref it names is re-verified against the
// gateway before anything is credited.
func (h *PaymentHandler) Callback(c *gin.Context) {
	var req dto.CallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	txRef := req.Ref()
	if txRef == "" {
		response.Error(c, apperror.Validation("transaction reference is required"))
		return
	}

	h.log.Info().Str("tx_ref", txRef).Str("status", req.Status).Msg("payment callback received")

	result, err := h.reconcileSvc.Reconcile(c.Request.Context(), txRef)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toReconcileResponse(result))
}

// CallbackProbe handles GET /api/payment-callback. The provider and some
// monitors probe the callback URL before use.
func (h *PaymentHandler) CallbackProbe(c *gin.Context) {
	response.OK(c, gin.H{"message": "Callback endpoint is active"})
}

// Verify handles GET /api/payment/verify/:tx_ref. Read-only: reports the
// gateway's view without crediting anything.
func (h *PaymentHandler) Verify(c *gin.Context) {
	txRef := c.Param("tx_ref")

	result, err := h.reconcileSvc.VerifyOnly(c.Request.Context(), txRef)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.VerifyResponse{
		TxRef:    txRef,
		Status:   result.Status,
		Amount:   result.Amount,
		Currency: result.Currency,
	})
}

func toReconcileResponse(r *ports.ReconcileResult) dto.ReconcileResponse {
	return dto.ReconcileResponse{
		TxRef:            r.TxRef,
		Status:           string(r.Status),
		Amount:           r.Amount,
		NewBalance:       r.NewBalance,
		AlreadyCompleted: r.AlreadyCompleted,
	}
}
