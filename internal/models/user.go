package models

import (
	"time"

	"gorm.io/gorm"
)

// User is owned by the account subsystem; the fulfillment core only reads
// identity and contact fields from it.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Email     string         `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name      string         `gorm:"size:255" json:"name"`
	Role      string         `gorm:"size:20;not null;default:'BUYER'" json:"role"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}
