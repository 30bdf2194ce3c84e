package repository

import (
	"testing"
	"time"

	"darra/internal/database"
	"darra/internal/domain"
	"darra/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func TestOutboxEnqueueIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOutboxRepository(db)

	require.NoError(t, repo.Enqueue("DARRA_abcd1234"))
	require.NoError(t, repo.Enqueue("DARRA_abcd1234"))

	var n int64
	require.NoError(t, db.Model(&models.Outbox{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)

	row, err := repo.Get("DARRA_abcd1234")
	require.NoError(t, err)
	assert.Equal(t, domain.OutboxQueued, row.State)
	assert.Equal(t, 0, row.Attempts)
}

func TestOutboxClaimWinsOnce(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOutboxRepository(db)
	require.NoError(t, repo.Enqueue("DARRA_abcd1234"))

	claimed, err := repo.Claim("DARRA_abcd1234")
	require.NoError(t, err)
	assert.True(t, claimed)

	// A second claim loses; the row is RUNNING with one attempt.
	claimed, err = repo.Claim("DARRA_abcd1234")
	require.NoError(t, err)
	assert.False(t, claimed)

	row, err := repo.Get("DARRA_abcd1234")
	require.NoError(t, err)
	assert.Equal(t, domain.OutboxRunning, row.State)
	assert.Equal(t, 1, row.Attempts)
	assert.NotNil(t, row.ClaimedAt)

	// Claiming a reference that was never enqueued is a clean miss.
	claimed, err = repo.Claim("DARRA_deadbeef")
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestOutboxFinishAndListQueued(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOutboxRepository(db)
	require.NoError(t, repo.Enqueue("DARRA_00000001"))
	require.NoError(t, repo.Enqueue("DARRA_00000002"))

	refs, err := repo.ListQueued(10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"DARRA_00000001", "DARRA_00000002"}, refs)

	_, err = repo.Claim("DARRA_00000001")
	require.NoError(t, err)
	require.NoError(t, repo.Finish("DARRA_00000001", domain.OutboxCompleted, "fanout", ""))

	refs, err = repo.ListQueued(10)
	require.NoError(t, err)
	assert.Equal(t, []string{"DARRA_00000002"}, refs)

	row, err := repo.Get("DARRA_00000001")
	require.NoError(t, err)
	assert.Equal(t, domain.OutboxCompleted, row.State)
}

func TestOutboxRequeueStale(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOutboxRepository(db)

	// A worker died mid-run: RUNNING with an old claim.
	require.NoError(t, repo.Enqueue("DARRA_00000001"))
	_, err := repo.Claim("DARRA_00000001")
	require.NoError(t, err)
	stale := time.Now().Add(-time.Hour)
	require.NoError(t, db.Model(&models.Outbox{}).
		Where("payment_reference = ?", "DARRA_00000001").
		Update("claimed_at", stale).Error)

	// A partial run under the attempt cap.
	require.NoError(t, repo.Enqueue("DARRA_00000002"))
	_, err = repo.Claim("DARRA_00000002")
	require.NoError(t, err)
	require.NoError(t, repo.Finish("DARRA_00000002", domain.OutboxPartial, "fanout", "tickets: boom"))

	// A partial run at the cap stays parked for a human.
	require.NoError(t, repo.Enqueue("DARRA_00000003"))
	_, err = repo.Claim("DARRA_00000003")
	require.NoError(t, err)
	require.NoError(t, repo.Finish("DARRA_00000003", domain.OutboxPartial, "fanout", "tickets: boom"))
	require.NoError(t, db.Model(&models.Outbox{}).
		Where("payment_reference = ?", "DARRA_00000003").
		Update("attempts", 10).Error)

	// A healthy RUNNING row inside the visibility window is left alone.
	require.NoError(t, repo.Enqueue("DARRA_00000004"))
	_, err = repo.Claim("DARRA_00000004")
	require.NoError(t, err)

	n, err := repo.RequeueStale(5*time.Minute, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	refs, err := repo.ListQueued(10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"DARRA_00000001", "DARRA_00000002"}, refs)
}
