package handler

import (
	"errors"
	"net/http"

	"darra/internal/domain"
	"darra/internal/middleware"
	"darra/internal/repository"
	"darra/internal/service"
	"darra/pkg/tickets"

	"github.com/gin-gonic/gin"
)

type TicketHandler struct {
	svc     *service.TicketService
	repo    *repository.TicketRepository
	library *repository.LibraryRepository
	store   *tickets.Store
}

func NewTicketHandler(svc *service.TicketService, repo *repository.TicketRepository, library *repository.LibraryRepository, store *tickets.Store) *TicketHandler {
	return &TicketHandler{svc: svc, repo: repo, library: library, store: store}
}

// Get returns a ticket with its asset URLs.
func (h *TicketHandler) Get(c *gin.Context) {
	t, err := h.repo.GetByTicketID(c.Param("ticket_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ticket":  t,
		"png_url": h.store.URL(t.PNGPath),
		"qr_url":  h.store.URL(t.QRPath),
	})
}

// Verify marks a ticket as used at the gate. Seller only.
func (h *TicketHandler) Verify(c *gin.Context) {
	verifierID := middleware.GetUserID(c)
	t, err := h.svc.MarkUsed(c.Param("ticket_id"), verifierID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
		case errors.Is(err, domain.ErrValidation):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "ticket": t})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "verification failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": t})
}

// Library lists the authenticated user's entitlements.
func (h *TicketHandler) Library(c *gin.Context) {
	userID := middleware.GetUserID(c)
	list, err := h.library.ListByUser(userID, 100, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load library"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"library": list})
}
