package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is read-only to the fulfillment core; the catalog subsystem owns it.
type Product struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	SellerID  uint            `gorm:"not null;index" json:"seller_id"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	Kind      string          `gorm:"size:20;not null" json:"kind"` // EVENT, DIGITAL
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	EventDate *time.Time      `json:"event_date"`
	Venue     string          `gorm:"size:255" json:"venue"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`

	Seller User         `gorm:"foreignKey:SellerID" json:"-"`
	Tiers  []TicketTier `gorm:"foreignKey:ProductID" json:"tiers,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

type TicketTier struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	ProductID         uint            `gorm:"not null;index" json:"product_id"`
	Name              string          `gorm:"size:100;not null" json:"name"`
	Price             decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	QuantityAvailable int             `gorm:"not null" json:"quantity_available"`
	QuantitySold      int             `gorm:"not null;default:0" json:"quantity_sold"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (TicketTier) TableName() string {
	return "ticket_tiers"
}

// Remaining returns the number of unsold seats in the tier.
func (t *TicketTier) Remaining() int {
	return t.QuantityAvailable - t.QuantitySold
}
