package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Commission records the platform fee and seller payout for one purchase.
// Exactly one exists per confirmed purchase.
type Commission struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	SellerID         uint            `gorm:"not null;index" json:"seller_id"`
	PurchaseID       uint            `gorm:"uniqueIndex;not null" json:"purchase_id"`
	Gross            decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"gross"`
	CommissionAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"commission_amount"`
	SellerPayout     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"seller_payout"`
	Status           string          `gorm:"size:20;not null;default:'PENDING'" json:"status"`
	PaidAt           *time.Time      `json:"paid_at"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`

	Seller   User     `gorm:"foreignKey:SellerID" json:"-"`
	Purchase Purchase `gorm:"foreignKey:PurchaseID" json:"-"`
}

func (Commission) TableName() string {
	return "commissions"
}
