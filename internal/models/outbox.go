package models

import "time"

// Outbox is the durable record of post-confirmation work. The coordinator
// writes a row in the same transaction as the SUCCESS transition; workers
// claim rows with a conditional update so duplicate handoffs do no
// duplicate work.
type Outbox struct {
	PaymentReference string    `gorm:"primaryKey;size:64" json:"payment_reference"`
	Stage            string    `gorm:"size:50" json:"stage"`
	State            string    `gorm:"size:30;not null;index" json:"state"` // QUEUED, RUNNING, COMPLETED, PARTIALLY_COMPLETED
	Attempts         int       `gorm:"not null;default:0" json:"attempts"`
	LastError        string    `gorm:"type:text" json:"last_error"`
	ClaimedAt        *time.Time `json:"claimed_at"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (Outbox) TableName() string {
	return "outbox"
}
