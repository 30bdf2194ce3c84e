package repository

import (
	"darra/internal/models"

	"gorm.io/gorm"
)

type LibraryRepository struct {
	db *gorm.DB
}

func NewLibraryRepository(db *gorm.DB) *LibraryRepository {
	return &LibraryRepository{db: db}
}

func (r *LibraryRepository) WithTx(tx *gorm.DB) *LibraryRepository {
	return &LibraryRepository{db: tx}
}

func (r *LibraryRepository) CountByPurchase(purchaseID uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.LibraryEntry{}).Where("purchase_id = ?", purchaseID).Count(&n).Error
	return n, err
}

func (r *LibraryRepository) CreateBatch(entries []models.LibraryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.Create(&entries).Error
}

func (r *LibraryRepository) ListByUser(userID uint, limit, offset int) ([]models.LibraryEntry, error) {
	var list []models.LibraryEntry
	err := r.db.Preload("Product").Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}
