package service

import (
	"context"
	"testing"

	"darra/config"
	"darra/internal/database"
	"darra/internal/domain"
	"darra/internal/models"
	"darra/internal/repository"
	"darra/pkg/gateway"
	"darra/pkg/tickets"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires the full service stack against an in-memory database and a
// stub gateway provider.
type testEnv struct {
	db          *gorm.DB
	payments    *repository.PaymentRepository
	products    *repository.ProductRepository
	users       *repository.UserRepository
	outbox      *repository.OutboxRepository
	ticketRepo  *repository.TicketRepository
	libraryRepo *repository.LibraryRepository
	notifRepo   *repository.NotificationRepository
	commissions *repository.CommissionRepository
	earnings    *repository.EarningsRepository
	payoutRepo  *repository.PayoutRepository
	banks       *repository.BankAccountRepository

	ledger      *LedgerService
	library     *LibraryService
	notifier    *NotificationService
	fanout      *FanoutService
	fulfillment *FulfillmentService
	payout      *PayoutService
	store       *tickets.Store
	provider    *gateway.StubProvider
	cfg         *config.MarketplaceConfig
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection so every session sees the same in-memory database.
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	cfg := &config.MarketplaceConfig{
		DefaultProvider: "paystack",
		Currency:        "NGN",
		CommissionRate:  decimal.RequireFromString("0.04"),
		MinPayout:       decimal.NewFromInt(1000),
		ReferencePrefix: "DARRA_",
	}
	provider := gateway.NewStubProvider("paystack")
	providers := map[string]gateway.Provider{"paystack": provider}
	store := tickets.NewStore(t.TempDir(), "/media")

	env := &testEnv{
		db:          db,
		payments:    repository.NewPaymentRepository(db),
		products:    repository.NewProductRepository(db),
		users:       repository.NewUserRepository(db),
		outbox:      repository.NewOutboxRepository(db),
		ticketRepo:  repository.NewTicketRepository(db),
		libraryRepo: repository.NewLibraryRepository(db),
		notifRepo:   repository.NewNotificationRepository(db),
		commissions: repository.NewCommissionRepository(db),
		earnings:    repository.NewEarningsRepository(db),
		payoutRepo:  repository.NewPayoutRepository(db),
		banks:       repository.NewBankAccountRepository(db),
		store:       store,
		provider:    provider,
		cfg:         cfg,
	}
	env.ledger = NewLedgerService(db, env.commissions, env.earnings, env.payoutRepo, env.banks, cfg.CommissionRate, cfg.MinPayout)
	env.library = NewLibraryService(db, env.libraryRepo)
	env.notifier = NewNotificationService(env.notifRepo, env.users, nil)
	env.fanout = NewFanoutService(db, env.payments, env.products, env.ticketRepo, env.outbox, env.users,
		env.ledger, env.library, env.notifier, store)
	env.fulfillment = NewFulfillmentService(db, env.payments, env.products, env.users, env.outbox, providers, cfg)
	env.payout = NewPayoutService(env.ledger, providers, cfg.DefaultProvider, cfg.Currency)
	return env
}

func (e *testEnv) createUser(t *testing.T, email, role string) *models.User {
	t.Helper()
	u := &models.User{Email: email, Name: "Test " + email, Role: role}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func (e *testEnv) createEventProduct(t *testing.T, sellerID uint, name, tierPrice string, available int) (*models.Product, *models.TicketTier) {
	t.Helper()
	p := &models.Product{
		SellerID: sellerID,
		Name:     name,
		Kind:     domain.ProductKindEvent,
		Price:    decimal.RequireFromString(tierPrice),
		Venue:    "Main Hall",
	}
	require.NoError(t, e.db.Create(p).Error)
	tier := &models.TicketTier{
		ProductID:         p.ID,
		Name:              "Regular",
		Price:             decimal.RequireFromString(tierPrice),
		QuantityAvailable: available,
	}
	require.NoError(t, e.db.Create(tier).Error)
	return p, tier
}

func (e *testEnv) createDigitalProduct(t *testing.T, sellerID uint, name, price string) *models.Product {
	t.Helper()
	p := &models.Product{
		SellerID: sellerID,
		Name:     name,
		Kind:     domain.ProductKindDigital,
		Price:    decimal.RequireFromString(price),
	}
	require.NoError(t, e.db.Create(p).Error)
	return p
}

func (e *testEnv) createBankAccount(t *testing.T, userID uint) *models.BankAccount {
	t.Helper()
	b := &models.BankAccount{
		UserID:        userID,
		BankCode:      "058",
		AccountNumber: "0123456789",
		AccountName:   "Test Seller",
	}
	require.NoError(t, e.db.Create(b).Error)
	return b
}

// confirmedOrder runs a checkout and confirms it, returning the payment
// reference with its fanout queued but not yet executed.
func (e *testEnv) confirmedOrder(t *testing.T, buyerID uint, items []CheckoutItem) string {
	t.Helper()
	result, err := e.fulfillment.Checkout(context.Background(), buyerID, items, "")
	require.NoError(t, err)
	_, err = e.fulfillment.Transition(result.PaymentReference, gateway.StatusSuccess, "txn_test")
	require.NoError(t, err)
	return result.PaymentReference
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, got.Equal(decimal.RequireFromString(want)), "want %s, got %s", want, got)
}

func (e *testEnv) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := e.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
