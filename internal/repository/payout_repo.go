package repository

import (
	"darra/internal/domain"
	"darra/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PayoutRepository struct {
	db *gorm.DB
}

func NewPayoutRepository(db *gorm.DB) *PayoutRepository {
	return &PayoutRepository{db: db}
}

func (r *PayoutRepository) WithTx(tx *gorm.DB) *PayoutRepository {
	return &PayoutRepository{db: tx}
}

func (r *PayoutRepository) Create(p *models.PayoutRequest) error {
	return r.db.Create(p).Error
}

func (r *PayoutRepository) GetByID(id uint) (*models.PayoutRequest, error) {
	var p models.PayoutRequest
	err := r.db.Preload("BankAccount").First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PayoutRepository) Update(p *models.PayoutRequest) error {
	return r.db.Save(p).Error
}

func (r *PayoutRepository) ListBySeller(sellerID uint, limit, offset int) ([]models.PayoutRequest, error) {
	var list []models.PayoutRequest
	err := r.db.Where("seller_id = ?", sellerID).Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// SumCompleted totals the seller's completed payouts.
func (r *PayoutRepository) SumCompleted(sellerID uint) (decimal.Decimal, error) {
	var row struct {
		Total decimal.NullDecimal
	}
	err := r.db.Model(&models.PayoutRequest{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("seller_id = ? AND status = ?", sellerID, domain.PayoutCompleted).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total.Decimal, nil
}
