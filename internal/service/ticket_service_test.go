package service

import (
	"testing"

	"darra/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkUsedSingleEntry(t *testing.T) {
	env := newTestEnv(t)
	buyer := env.createUser(t, "buyer@test.com", domain.RoleBuyer)
	seller := env.createUser(t, "seller@test.com", domain.RoleSeller)
	verifier := env.createUser(t, "gate@test.com", domain.RoleSeller)
	_, tier := env.createEventProduct(t, seller.ID, "Concert", "5000", 10)

	ref := env.confirmedOrder(t, buyer.ID, []CheckoutItem{
		{ProductID: tier.ProductID, Quantity: 1, TierID: &tier.ID},
	})
	require.NoError(t, env.fanout.Run(ref))

	list, err := env.ticketRepo.ListByPurchase(mustFirstPurchaseID(t, env, ref))
	require.NoError(t, err)
	require.Len(t, list, 1)
	ticketID := list[0].TicketID

	svc := NewTicketService(env.db, env.ticketRepo)
	used, err := svc.MarkUsed(ticketID, verifier.ID)
	require.NoError(t, err)
	assert.True(t, used.IsUsed)

	stored, err := env.ticketRepo.GetByTicketID(ticketID)
	require.NoError(t, err)
	assert.True(t, stored.IsUsed)
	require.NotNil(t, stored.UsedAt)
	require.NotNil(t, stored.VerifiedBy)
	assert.Equal(t, verifier.ID, *stored.VerifiedBy)

	// The second scan is rejected, not silently accepted.
	_, err = svc.MarkUsed(ticketID, verifier.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.MarkUsed("no-such-ticket", verifier.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func mustFirstPurchaseID(t *testing.T, env *testEnv, reference string) uint {
	t.Helper()
	payment, err := env.payments.GetByReference(reference)
	require.NoError(t, err)
	purchases, err := env.payments.Purchases(payment.ID)
	require.NoError(t, err)
	require.NotEmpty(t, purchases)
	return purchases[0].ID
}
