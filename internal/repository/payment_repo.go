package repository

import (
	"darra/internal/models"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *PaymentRepository) WithTx(tx *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: tx}
}

func (r *PaymentRepository) Create(p *models.Payment) error {
	return r.db.Create(p).Error
}

func (r *PaymentRepository) GetByReference(ref string) (*models.Payment, error) {
	var p models.Payment
	err := r.db.Where("reference = ?", ref).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByReferenceForUpdate row-locks the payment; call inside a transaction.
func (r *PaymentRepository) GetByReferenceForUpdate(ref string) (*models.Payment, error) {
	var p models.Payment
	err := lockForUpdate(r.db).Where("reference = ?", ref).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) Update(p *models.Payment) error {
	return r.db.Save(p).Error
}

// Purchases loads the payment's lines with their products and tiers.
func (r *PaymentRepository) Purchases(paymentID uint) ([]models.Purchase, error) {
	var list []models.Purchase
	err := r.db.Preload("Product").Preload("Tier").Where("payment_id = ?", paymentID).Order("id").Find(&list).Error
	return list, err
}
