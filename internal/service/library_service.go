package service

import (
	"fmt"

	"darra/internal/domain"
	"darra/internal/models"
	"darra/internal/repository"

	"gorm.io/gorm"
)

// LibraryService materializes purchases into per-user entitlement rows:
// one row per seat for event purchases, one row per purchase for digital
// goods.
type LibraryService struct {
	db   *gorm.DB
	repo *repository.LibraryRepository
}

func NewLibraryService(db *gorm.DB, repo *repository.LibraryRepository) *LibraryService {
	return &LibraryService{db: db, repo: repo}
}

// Provision creates the library entries for every purchase of a payment in
// one transaction. Idempotent.
func (s *LibraryService) Provision(payment *models.Payment, purchases []models.Purchase) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for i := range purchases {
			if err := s.ProvisionPurchase(tx, payment.BuyerID, &purchases[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// ProvisionPurchase creates the entries for one purchase inside the given
// transaction. If the expected count already exists it does nothing.
func (s *LibraryService) ProvisionPurchase(tx *gorm.DB, buyerID uint, purchase *models.Purchase) error {
	repo := s.repo.WithTx(tx)
	existing, err := repo.CountByPurchase(purchase.ID)
	if err != nil {
		return err
	}
	expected := int64(1)
	if purchase.Product.Kind == domain.ProductKindEvent {
		expected = int64(purchase.Quantity)
	}
	if existing >= expected {
		return nil
	}
	var entries []models.LibraryEntry
	if purchase.Product.Kind == domain.ProductKindEvent {
		for i := existing; i < expected; i++ {
			entries = append(entries, models.LibraryEntry{
				UserID:     buyerID,
				ProductID:  purchase.ProductID,
				PurchaseID: purchase.ID,
				Quantity:   1,
			})
		}
	} else {
		entries = append(entries, models.LibraryEntry{
			UserID:     buyerID,
			ProductID:  purchase.ProductID,
			PurchaseID: purchase.ID,
			Quantity:   purchase.Quantity,
		})
	}
	if err := repo.CreateBatch(entries); err != nil {
		return fmt.Errorf("provision purchase %d: %w", purchase.ID, err)
	}
	return nil
}
