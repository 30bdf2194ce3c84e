package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Payment struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Reference     string          `gorm:"size:64;uniqueIndex;not null" json:"reference"`
	BuyerID       uint            `gorm:"not null;index" json:"buyer_id"`
	Currency      string          `gorm:"size:3;default:'NGN'" json:"currency"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Provider      string          `gorm:"size:50;not null" json:"provider"`
	Status        string          `gorm:"size:20;not null;index" json:"status"` // PENDING, SUCCESS, FAILED, CANCELLED
	ProviderTxnID string          `gorm:"size:128" json:"provider_txn_id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`

	Buyer     User       `gorm:"foreignKey:BuyerID" json:"-"`
	Purchases []Purchase `gorm:"foreignKey:PaymentID" json:"purchases,omitempty"`
}

func (Payment) TableName() string {
	return "payments"
}
