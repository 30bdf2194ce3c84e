package service

import (
	"context"
	"testing"

	"darra/internal/domain"
	"darra/pkg/gateway"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestPayoutCompletes(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller@test.com", domain.RoleSeller)
	bank := env.createBankAccount(t, seller.ID)
	seedCommission(t, env, seller.ID, "50000")

	payout, err := env.payout.RequestPayout(context.Background(), seller.ID, decimal.RequireFromString("10000"), bank.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PayoutCompleted, payout.Status)
	assert.Equal(t, "trf_"+payout.OrderID, payout.TransferReference)
	require.NotNil(t, payout.ProcessedAt)

	// The transfer carried the seller's bank details.
	require.Len(t, env.provider.TransferCalls, 1)
	call := env.provider.TransferCalls[0]
	assert.Equal(t, "0123456789", call.AccountNumber)
	assert.Equal(t, "058", call.BankCode)
	requireDecimal(t, "10000", call.Amount)

	// Completed payouts come straight out of the available balance.
	earnings, err := env.earnings.GetBySellerID(seller.ID)
	require.NoError(t, err)
	requireDecimal(t, "10000", earnings.TotalPayouts)
	requireDecimal(t, "38000", earnings.AvailableBalance)
}

func TestRequestPayoutGatewayError(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller@test.com", domain.RoleSeller)
	bank := env.createBankAccount(t, seller.ID)
	seedCommission(t, env, seller.ID, "50000")
	env.provider.TransferErr = gateway.ErrNetwork

	payout, err := env.payout.RequestPayout(context.Background(), seller.ID, decimal.RequireFromString("10000"), bank.ID)
	assert.ErrorIs(t, err, domain.ErrTransient)
	require.NotNil(t, payout)

	stored, gerr := env.payoutRepo.GetByID(payout.ID)
	require.NoError(t, gerr)
	assert.Equal(t, domain.PayoutFailed, stored.Status)
	assert.NotEmpty(t, stored.FailureReason)

	// A failed payout never leaves the balance reduced.
	require.NoError(t, env.ledger.RefreshEarnings(seller.ID))
	earnings, gerr := env.earnings.GetBySellerID(seller.ID)
	require.NoError(t, gerr)
	requireDecimal(t, "0", earnings.TotalPayouts)
	requireDecimal(t, "48000", earnings.AvailableBalance)
}

func TestRequestPayoutReportedFailed(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller@test.com", domain.RoleSeller)
	bank := env.createBankAccount(t, seller.ID)
	seedCommission(t, env, seller.ID, "50000")
	env.provider.TransferStatus = gateway.StatusFailed

	payout, err := env.payout.RequestPayout(context.Background(), seller.ID, decimal.RequireFromString("10000"), bank.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PayoutFailed, payout.Status)
}

func TestRequestPayoutPendingTransfer(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller@test.com", domain.RoleSeller)
	bank := env.createBankAccount(t, seller.ID)
	seedCommission(t, env, seller.ID, "50000")
	env.provider.TransferStatus = gateway.StatusPending

	payout, err := env.payout.RequestPayout(context.Background(), seller.ID, decimal.RequireFromString("10000"), bank.ID)
	require.NoError(t, err)
	// In-flight transfers stay pending for later reconciliation.
	assert.Equal(t, domain.PayoutPending, payout.Status)
	assert.Equal(t, "trf_"+payout.OrderID, payout.TransferReference)
	assert.Nil(t, payout.ProcessedAt)
}

func TestRequestPayoutInsufficientBalanceNeverHitsGateway(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller@test.com", domain.RoleSeller)
	bank := env.createBankAccount(t, seller.ID)
	seedCommission(t, env, seller.ID, "50000")

	_, err := env.payout.RequestPayout(context.Background(), seller.ID, decimal.RequireFromString("48000.01"), bank.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.Empty(t, env.provider.TransferCalls)
}
