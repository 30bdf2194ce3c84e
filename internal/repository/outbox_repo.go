package repository

import (
	"time"

	"darra/internal/domain"
	"darra/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OutboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

func (r *OutboxRepository) WithTx(tx *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: tx}
}

// Enqueue writes the outbox row for a confirmed payment. The reference is
// the primary key, so duplicate handoffs collapse into one row.
func (r *OutboxRepository) Enqueue(reference string) error {
	row := models.Outbox{
		PaymentReference: reference,
		State:            domain.OutboxQueued,
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

// Claim flips a queued row to RUNNING with a conditional update. Only one
// worker can win; the others see zero rows affected.
func (r *OutboxRepository) Claim(reference string) (bool, error) {
	now := time.Now()
	res := r.db.Model(&models.Outbox{}).
		Where("payment_reference = ? AND state = ?", reference, domain.OutboxQueued).
		Updates(map[string]interface{}{
			"state":      domain.OutboxRunning,
			"attempts":   gorm.Expr("attempts + 1"),
			"claimed_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *OutboxRepository) Get(reference string) (*models.Outbox, error) {
	var row models.Outbox
	err := r.db.First(&row, "payment_reference = ?", reference).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Finish records the terminal (or partial) state of a run.
func (r *OutboxRepository) Finish(reference, state, stage, lastError string) error {
	return r.db.Model(&models.Outbox{}).
		Where("payment_reference = ?", reference).
		Updates(map[string]interface{}{
			"state":      state,
			"stage":      stage,
			"last_error": lastError,
		}).Error
}

// ListQueued returns queued references, oldest first.
func (r *OutboxRepository) ListQueued(limit int) ([]string, error) {
	var refs []string
	err := r.db.Model(&models.Outbox{}).
		Where("state = ?", domain.OutboxQueued).
		Order("created_at").Limit(limit).
		Pluck("payment_reference", &refs).Error
	return refs, err
}

// RequeueStale re-arms rows stuck in RUNNING past the visibility timeout
// (worker crashed mid-run) and PARTIALLY_COMPLETED rows under the attempt
// cap. Returns how many rows were re-queued.
func (r *OutboxRepository) RequeueStale(visibility time.Duration, maxAttempts int) (int64, error) {
	cutoff := time.Now().Add(-visibility)
	res := r.db.Model(&models.Outbox{}).
		Where("(state = ? AND claimed_at < ?) OR (state = ? AND attempts < ?)",
			domain.OutboxRunning, cutoff, domain.OutboxPartial, maxAttempts).
		Update("state", domain.OutboxQueued)
	return res.RowsAffected, res.Error
}
