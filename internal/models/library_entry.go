package models

import "time"

// LibraryEntry is a per-user entitlement row: one per seat for event
// purchases, one per purchase (carrying the quantity) for digital goods.
type LibraryEntry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	ProductID  uint      `gorm:"not null;index" json:"product_id"`
	PurchaseID uint      `gorm:"not null;index" json:"purchase_id"`
	Quantity   int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt  time.Time `json:"created_at"`

	User     User     `gorm:"foreignKey:UserID" json:"-"`
	Product  Product  `gorm:"foreignKey:ProductID" json:"-"`
	Purchase Purchase `gorm:"foreignKey:PurchaseID" json:"-"`
}

func (LibraryEntry) TableName() string {
	return "library_entries"
}
