package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase is one line of a payment. Immutable once created.
type Purchase struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	PaymentID  uint            `gorm:"not null;index" json:"payment_id"`
	ProductID  uint            `gorm:"not null;index" json:"product_id"`
	TierID     *uint           `gorm:"index" json:"tier_id"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`

	Payment Payment     `gorm:"foreignKey:PaymentID" json:"-"`
	Product Product     `gorm:"foreignKey:ProductID" json:"-"`
	Tier    *TicketTier `gorm:"foreignKey:TierID" json:"-"`
}

func (Purchase) TableName() string {
	return "purchases"
}
