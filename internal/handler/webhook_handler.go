package handler

import (
	"errors"
	"io"
	"net/http"

	"darra/config"
	"darra/internal/domain"
	"darra/internal/service"
	"darra/internal/worker"
	"darra/pkg/gateway"

	"github.com/gin-gonic/gin"
)

// WebhookHandler receives gateway callbacks. Idempotent no-ops answer 200
// so providers stop retrying; only malformed payloads get a 400.
type WebhookHandler struct {
	fulfillment *service.FulfillmentService
	pool        *worker.Pool
	cfg         *config.Config
}

func NewWebhookHandler(fulfillment *service.FulfillmentService, pool *worker.Pool, cfg *config.Config) *WebhookHandler {
	return &WebhookHandler{fulfillment: fulfillment, pool: pool, cfg: cfg}
}

func (h *WebhookHandler) Paystack(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if !service.VerifyPaystackSignature(body, c.GetHeader("x-paystack-signature"), h.cfg.Paystack.SecretKey) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}
	h.apply(c, "paystack", body)
}

func (h *WebhookHandler) Flutterwave(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if !service.VerifyFlutterwaveSignature(c.GetHeader("verif-hash"), h.cfg.Flutterwave.WebhookHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}
	h.apply(c, "flutterwave", body)
}

func (h *WebhookHandler) apply(c *gin.Context, providerName string, body []byte) {
	event, err := service.ParseWebhook(providerName, body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	payment, err := h.fulfillment.HandleWebhook(event)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Unknown reference: acknowledge so the gateway stops retrying,
			// reconciliation picks it up from gateway reports.
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook processing failed"})
		return
	}
	if payment != nil && payment.Status == domain.PaymentSuccess && event.Status == gateway.StatusSuccess && h.pool != nil {
		h.pool.Enqueue(payment.Reference)
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
