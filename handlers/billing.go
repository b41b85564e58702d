package handlers

import (
	"io"
	"net/http"

	"finehero/services/billing"
	"finehero/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// webhookBodyLimit bounds the Stripe webhook payload read.
const webhookBodyLimit = 64 << 10

// BillingHandler serves credit pack and payment endpoints.
type BillingHandler struct {
	BillingService billing.BillingService
}

// ListPacksHandler handles GET /api/billing/packs.
func (h *BillingHandler) ListPacksHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.BillingService.Packs())
}

// CreatePaymentIntentHandler handles POST /api/billing/intent. It expects a
// JSON payload with "packId" and returns the Stripe client secret.
func (h *BillingHandler) CreatePaymentIntentHandler(c *gin.Context) {
	logger := utils.GetLogger()
	userID := c.GetString("userID")

	var req struct {
		PackID string `json:"packId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	secret, err := h.BillingService.CreatePaymentIntent(c.Request.Context(), userID, req.PackID)
	if err != nil {
		logger.Error("Payment intent failed",
			zap.String("userId", userID), zap.String("packId", req.PackID), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"clientSecret": secret})
}

// StripeWebhookHandler handles POST /api/billing/webhook. The route is
// unauthenticated; the Stripe signature header is the authentication.
func (h *BillingHandler) StripeWebhookHandler(c *gin.Context) {
	logger := utils.GetLogger()

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, webhookBodyLimit))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read payload"})
		return
	}

	if err := h.BillingService.HandleWebhook(payload, c.GetHeader("Stripe-Signature")); err != nil {
		logger.Warn("Webhook rejected", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// LedgerHandler handles GET /api/billing/ledger.
func (h *BillingHandler) LedgerHandler(c *gin.Context) {
	userID := c.GetString("userID")

	entries, err := h.BillingService.GetLedger(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, entries)
}
