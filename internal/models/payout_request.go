package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PayoutRequest struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	SellerID          uint            `gorm:"not null;index" json:"seller_id"`
	OrderID           string          `gorm:"size:64;uniqueIndex;not null" json:"order_id"`
	Amount            decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	BankAccountID     uint            `gorm:"not null" json:"bank_account_id"`
	Status            string          `gorm:"size:20;not null;index" json:"status"` // PENDING, COMPLETED, FAILED
	TransferReference string          `gorm:"size:128" json:"transfer_reference"`
	FailureReason     string          `gorm:"size:255" json:"failure_reason"`
	ProcessedAt       *time.Time      `json:"processed_at"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	Seller      User        `gorm:"foreignKey:SellerID" json:"-"`
	BankAccount BankAccount `gorm:"foreignKey:BankAccountID" json:"-"`
}

func (PayoutRequest) TableName() string {
	return "payout_requests"
}
