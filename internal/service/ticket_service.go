package service

import (
	"errors"
	"fmt"
	"time"

	"darra/internal/domain"
	"darra/internal/models"
	"darra/internal/repository"

	"gorm.io/gorm"
)

// TicketService covers gate-side ticket verification.
type TicketService struct {
	db   *gorm.DB
	repo *repository.TicketRepository
}

func NewTicketService(db *gorm.DB, repo *repository.TicketRepository) *TicketService {
	return &TicketService{db: db, repo: repo}
}

// MarkUsed flips a ticket to used at most once, recording when and by whom.
// A second scan reports the conflict instead of silently passing the gate.
func (s *TicketService) MarkUsed(ticketID string, verifierID uint) (*models.Ticket, error) {
	var ticket *models.Ticket
	err := s.db.Transaction(func(tx *gorm.DB) error {
		t, err := s.repo.WithTx(tx).GetByTicketIDForUpdate(ticketID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: ticket %s", domain.ErrNotFound, ticketID)
			}
			return err
		}
		ticket = t
		if t.IsUsed {
			return fmt.Errorf("%w: ticket already used", domain.ErrValidation)
		}
		return s.repo.WithTx(tx).MarkUsed(t, verifierID, time.Now())
	})
	if err != nil {
		return ticket, err
	}
	return ticket, nil
}
