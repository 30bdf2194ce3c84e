package service

import (
	"testing"

	"darra/internal/domain"
	"darra/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyDedupesOnKey(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "user@test.com", domain.RoleBuyer)

	for i := 0; i < 3; i++ {
		err := env.notifier.Notify(user.ID, domain.NotifPayment, "Payment confirmed", "body",
			map[string]interface{}{"reference": "DARRA_abcd1234"}, "DARRA_abcd1234:PAYMENT:buyer:1")
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, env.count(t, &models.Notification{}, "user_id = ?", user.ID))
}

func TestNotifyWithoutKeyAlwaysInserts(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "user@test.com", domain.RoleBuyer)

	for i := 0; i < 2; i++ {
		require.NoError(t, env.notifier.Notify(user.ID, domain.NotifPromotional, "Sale", "body", nil, ""))
	}
	assert.EqualValues(t, 2, env.count(t, &models.Notification{}, "user_id = ?", user.ID))
}

func TestMarkReadScopedToOwner(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@test.com", domain.RoleBuyer)
	other := env.createUser(t, "other@test.com", domain.RoleBuyer)
	require.NoError(t, env.notifier.Notify(owner.ID, domain.NotifOrder, "New order", "body", nil, ""))

	list, err := env.notifRepo.ListByUserID(owner.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)

	// Another user cannot mark it read.
	require.NoError(t, env.notifRepo.MarkRead(list[0].ID, other.ID))
	list, err = env.notifRepo.ListByUserID(owner.ID, 10, 0)
	require.NoError(t, err)
	assert.Nil(t, list[0].ReadAt)

	require.NoError(t, env.notifRepo.MarkRead(list[0].ID, owner.ID))
	list, err = env.notifRepo.ListByUserID(owner.ID, 10, 0)
	require.NoError(t, err)
	assert.NotNil(t, list[0].ReadAt)
}
