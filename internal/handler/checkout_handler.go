package handler

import (
	"errors"
	"net/http"

	"darra/internal/domain"
	"darra/internal/middleware"
	"darra/internal/service"

	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	fulfillment *service.FulfillmentService
}

func NewCheckoutHandler(fulfillment *service.FulfillmentService) *CheckoutHandler {
	return &CheckoutHandler{fulfillment: fulfillment}
}

// Create starts a checkout: prices the cart, records the pending payment,
// and returns the gateway authorization URL.
func (h *CheckoutHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Items    []service.CheckoutItem `json:"items" binding:"required,min=1,dive"`
		Provider string                 `json:"provider"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.fulfillment.Checkout(c.Request.Context(), userID, req.Items, req.Provider)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrTransient):
			// The pending payment exists; the client can retry verification.
			c.JSON(http.StatusBadGateway, gin.H{
				"error":             "payment initialization failed, try verifying shortly",
				"payment_reference": result.PaymentReference,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "checkout failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, result)
}
