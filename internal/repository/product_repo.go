package repository

import (
	"darra/internal/models"

	"gorm.io/gorm"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) WithTx(tx *gorm.DB) *ProductRepository {
	return &ProductRepository{db: tx}
}

func (r *ProductRepository) GetByID(id uint) (*models.Product, error) {
	var p models.Product
	err := r.db.Preload("Tiers").First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) GetTier(id uint) (*models.TicketTier, error) {
	var t models.TicketTier
	err := r.db.First(&t, id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTierForUpdate row-locks the tier; call inside a transaction.
func (r *ProductRepository) GetTierForUpdate(id uint) (*models.TicketTier, error) {
	var t models.TicketTier
	err := lockForUpdate(r.db).First(&t, id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *ProductRepository) UpdateTierSold(t *models.TicketTier) error {
	return r.db.Model(t).Update("quantity_sold", t.QuantitySold).Error
}
