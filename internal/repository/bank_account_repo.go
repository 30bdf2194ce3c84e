package repository

import (
	"darra/internal/models"

	"gorm.io/gorm"
)

type BankAccountRepository struct {
	db *gorm.DB
}

func NewBankAccountRepository(db *gorm.DB) *BankAccountRepository {
	return &BankAccountRepository{db: db}
}

// GetForUser loads a bank account only if it belongs to the given user.
func (r *BankAccountRepository) GetForUser(id, userID uint) (*models.BankAccount, error) {
	var b models.BankAccount
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}
