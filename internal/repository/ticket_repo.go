package repository

import (
	"time"

	"darra/internal/models"

	"gorm.io/gorm"
)

type TicketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

func (r *TicketRepository) WithTx(tx *gorm.DB) *TicketRepository {
	return &TicketRepository{db: tx}
}

func (r *TicketRepository) Create(t *models.Ticket) error {
	return r.db.Create(t).Error
}

func (r *TicketRepository) CountByPurchase(purchaseID uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.Ticket{}).Where("purchase_id = ?", purchaseID).Count(&n).Error
	return n, err
}

func (r *TicketRepository) ListByPurchase(purchaseID uint) ([]models.Ticket, error) {
	var list []models.Ticket
	err := r.db.Where("purchase_id = ?", purchaseID).Order("id").Find(&list).Error
	return list, err
}

func (r *TicketRepository) GetByTicketID(ticketID string) (*models.Ticket, error) {
	var t models.Ticket
	err := r.db.Where("ticket_id = ?", ticketID).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByTicketIDForUpdate row-locks the ticket; call inside a transaction.
func (r *TicketRepository) GetByTicketIDForUpdate(ticketID string) (*models.Ticket, error) {
	var t models.Ticket
	err := lockForUpdate(r.db).Where("ticket_id = ?", ticketID).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TicketRepository) SetAssetPaths(id uint, pngPath, qrPath string) error {
	return r.db.Model(&models.Ticket{}).Where("id = ?", id).
		Updates(map[string]interface{}{"png_path": pngPath, "qr_path": qrPath}).Error
}

func (r *TicketRepository) MarkUsed(t *models.Ticket, verifierID uint, at time.Time) error {
	t.IsUsed = true
	t.UsedAt = &at
	t.VerifiedBy = &verifierID
	return r.db.Model(t).Updates(map[string]interface{}{
		"is_used": true, "used_at": at, "verified_by": verifierID,
	}).Error
}

// ListMissingAssets returns tickets whose PNG or QR has not been stored yet.
func (r *TicketRepository) ListMissingAssets(limit int) ([]models.Ticket, error) {
	var list []models.Ticket
	err := r.db.Preload("Product").Preload("Buyer").
		Where("png_path = '' OR qr_path = ''").Order("id").Limit(limit).Find(&list).Error
	return list, err
}
