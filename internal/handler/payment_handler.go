package handler

import (
	"errors"
	"net/http"

	"darra/internal/domain"
	"darra/internal/service"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	fulfillment *service.FulfillmentService
}

func NewPaymentHandler(fulfillment *service.FulfillmentService) *PaymentHandler {
	return &PaymentHandler{fulfillment: fulfillment}
}

// Verify is the synchronous confirmation path. While the gateway is
// unreachable the client is told the payment is still processing and may
// poll again.
func (h *PaymentHandler) Verify(c *gin.Context) {
	reference := c.Param("reference")
	payment, err := h.fulfillment.Verify(c.Request.Context(), reference)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown payment reference"})
		case errors.Is(err, domain.ErrTransient):
			c.JSON(http.StatusBadGateway, gin.H{"status": payment.Status, "message": "still processing, try again"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "verification failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": payment.Status, "payment": payment})
}
