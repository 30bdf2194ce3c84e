package handler

import (
	"errors"
	"net/http"

	"darra/internal/domain"
	"darra/internal/middleware"
	"darra/internal/repository"
	"darra/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PayoutHandler struct {
	payouts    *service.PayoutService
	payoutRepo *repository.PayoutRepository
	earnings   *repository.EarningsRepository
}

func NewPayoutHandler(payouts *service.PayoutService, payoutRepo *repository.PayoutRepository, earnings *repository.EarningsRepository) *PayoutHandler {
	return &PayoutHandler{payouts: payouts, payoutRepo: payoutRepo, earnings: earnings}
}

// Create requests a payout of available earnings to a bank account. Seller only.
func (h *PayoutHandler) Create(c *gin.Context) {
	sellerID := middleware.GetUserID(c)
	var req struct {
		Amount        decimal.Decimal `json:"amount" binding:"required"`
		BankAccountID uint            `json:"bank_account_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	payout, err := h.payouts.RequestPayout(c.Request.Context(), sellerID, req.Amount, req.BankAccountID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInsufficientBalance):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrTransient):
			c.JSON(http.StatusBadGateway, gin.H{"error": "payout could not be processed", "payout": payout})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "payout failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, payout)
}

// List returns the seller's payout history.
func (h *PayoutHandler) List(c *gin.Context) {
	sellerID := middleware.GetUserID(c)
	list, err := h.payoutRepo.ListBySeller(sellerID, 50, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load payouts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payouts": list})
}

// Earnings returns the seller's aggregate balances. A seller with no sales
// yet has no row; that reads as a zero balance, not an error.
func (h *PayoutHandler) Earnings(c *gin.Context) {
	sellerID := middleware.GetUserID(c)
	e, err := h.earnings.GetBySellerID(sellerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, gin.H{"seller_id": sellerID, "available_balance": "0"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load earnings"})
		return
	}
	c.JSON(http.StatusOK, e)
}
