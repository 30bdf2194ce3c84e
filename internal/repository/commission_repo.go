package repository

import (
	"darra/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CommissionRepository struct {
	db *gorm.DB
}

func NewCommissionRepository(db *gorm.DB) *CommissionRepository {
	return &CommissionRepository{db: db}
}

func (r *CommissionRepository) WithTx(tx *gorm.DB) *CommissionRepository {
	return &CommissionRepository{db: tx}
}

func (r *CommissionRepository) GetByPurchaseID(purchaseID uint) (*models.Commission, error) {
	var c models.Commission
	err := r.db.Where("purchase_id = ?", purchaseID).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CommissionRepository) Create(c *models.Commission) error {
	return r.db.Create(c).Error
}

type CommissionTotals struct {
	Gross      decimal.Decimal
	Commission decimal.Decimal
}

// TotalsBySeller sums gross and commission across all of a seller's commissions.
func (r *CommissionRepository) TotalsBySeller(sellerID uint) (CommissionTotals, error) {
	var row struct {
		Gross      decimal.NullDecimal
		Commission decimal.NullDecimal
	}
	err := r.db.Model(&models.Commission{}).
		Select("COALESCE(SUM(gross), 0) AS gross, COALESCE(SUM(commission_amount), 0) AS commission").
		Where("seller_id = ?", sellerID).
		Scan(&row).Error
	if err != nil {
		return CommissionTotals{}, err
	}
	return CommissionTotals{Gross: row.Gross.Decimal, Commission: row.Commission.Decimal}, nil
}
