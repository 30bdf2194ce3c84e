package models

import (
	"time"

	"gorm.io/gorm"
)

// BankAccount holds a seller's payout destination. Validation of the account
// against the bank happens in the seller-profile subsystem; the core only
// checks ownership.
type BankAccount struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        uint           `gorm:"not null;index" json:"user_id"`
	BankCode      string         `gorm:"size:10;not null" json:"bank_code"`
	AccountNumber string         `gorm:"size:20;not null" json:"account_number"`
	AccountName   string         `gorm:"size:255" json:"account_name"`
	RecipientCode string         `gorm:"size:64" json:"recipient_code"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (BankAccount) TableName() string {
	return "bank_accounts"
}
