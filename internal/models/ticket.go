package models

import "time"

type Ticket struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	TicketID   string     `gorm:"size:36;uniqueIndex;not null" json:"ticket_id"`
	PurchaseID uint       `gorm:"not null;index" json:"purchase_id"`
	BuyerID    uint       `gorm:"not null;index" json:"buyer_id"`
	ProductID  uint       `gorm:"not null;index" json:"product_id"`
	IsUsed     bool       `gorm:"not null;default:false" json:"is_used"`
	UsedAt     *time.Time `json:"used_at"`
	VerifiedBy *uint      `json:"verified_by"`
	PNGPath    string     `gorm:"size:512" json:"png_path"`
	QRPath     string     `gorm:"size:512" json:"qr_path"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	Purchase Purchase `gorm:"foreignKey:PurchaseID" json:"-"`
	Buyer    User     `gorm:"foreignKey:BuyerID" json:"-"`
	Product  Product  `gorm:"foreignKey:ProductID" json:"-"`
}

func (Ticket) TableName() string {
	return "tickets"
}
