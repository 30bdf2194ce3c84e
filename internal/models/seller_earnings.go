package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SellerEarnings is a derived aggregate, recomputable from commissions and
// completed payout requests.
type SellerEarnings struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	SellerID         uint            `gorm:"uniqueIndex;not null" json:"seller_id"`
	TotalSales       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"total_sales"`
	TotalCommission  decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"total_commission"`
	TotalPayouts     decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"total_payouts"`
	AvailableBalance decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"available_balance"`
	UpdatedAt        time.Time       `json:"updated_at"`

	Seller User `gorm:"foreignKey:SellerID" json:"-"`
}

func (SellerEarnings) TableName() string {
	return "seller_earnings"
}
