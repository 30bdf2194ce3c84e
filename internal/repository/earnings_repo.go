package repository

import (
	"errors"

	"darra/internal/models"

	"gorm.io/gorm"
)

type EarningsRepository struct {
	db *gorm.DB
}

func NewEarningsRepository(db *gorm.DB) *EarningsRepository {
	return &EarningsRepository{db: db}
}

func (r *EarningsRepository) WithTx(tx *gorm.DB) *EarningsRepository {
	return &EarningsRepository{db: tx}
}

func (r *EarningsRepository) GetBySellerID(sellerID uint) (*models.SellerEarnings, error) {
	var e models.SellerEarnings
	err := r.db.Where("seller_id = ?", sellerID).First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetOrCreateForUpdate row-locks the seller's earnings row, creating it
// first if absent. All writes to a seller's aggregates serialize on this
// lock; call inside a transaction.
func (r *EarningsRepository) GetOrCreateForUpdate(sellerID uint) (*models.SellerEarnings, error) {
	var e models.SellerEarnings
	err := lockForUpdate(r.db).Where("seller_id = ?", sellerID).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		e = models.SellerEarnings{SellerID: sellerID}
		if err := r.db.Create(&e).Error; err != nil {
			return nil, err
		}
		return &e, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EarningsRepository) Save(e *models.SellerEarnings) error {
	return r.db.Save(e).Error
}
