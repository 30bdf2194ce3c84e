package router

import (
	"time"

	"darra/config"
	"darra/internal/handler"
	"darra/internal/middleware"
	"darra/internal/repository"
	"darra/internal/service"
	"darra/internal/worker"
	"darra/pkg/gateway"
	"darra/pkg/tickets"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Setup wires repositories, services, the worker pool and routes. The
// returned pool must be started by the caller.
func Setup(cfg *config.Config, db *gorm.DB, providers map[string]gateway.Provider) (*gin.Engine, *worker.Pool) {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// Repositories
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	commissionRepo := repository.NewCommissionRepository(db)
	earningsRepo := repository.NewEarningsRepository(db)
	payoutRepo := repository.NewPayoutRepository(db)
	bankRepo := repository.NewBankAccountRepository(db)
	libraryRepo := repository.NewLibraryRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)

	store := tickets.NewStore(cfg.Media.Root, cfg.Media.BaseURL)

	// Services
	emailSvc := service.NewEmailService(&cfg.SMTP)
	notifSvc := service.NewNotificationService(notificationRepo, userRepo, emailSvc)
	ledgerSvc := service.NewLedgerService(db, commissionRepo, earningsRepo, payoutRepo, bankRepo,
		cfg.Marketplace.CommissionRate, cfg.Marketplace.MinPayout)
	librarySvc := service.NewLibraryService(db, libraryRepo)
	fanoutSvc := service.NewFanoutService(db, paymentRepo, productRepo, ticketRepo, outboxRepo,
		userRepo, ledgerSvc, librarySvc, notifSvc, store)
	fulfillmentSvc := service.NewFulfillmentService(db, paymentRepo, productRepo, userRepo,
		outboxRepo, providers, &cfg.Marketplace)
	payoutSvc := service.NewPayoutService(ledgerSvc, providers, cfg.Marketplace.DefaultProvider, cfg.Marketplace.Currency)
	ticketSvc := service.NewTicketService(db, ticketRepo)

	pool := worker.NewPool(&cfg.Worker, outboxRepo, fanoutSvc)

	// Handlers
	checkoutHandler := handler.NewCheckoutHandler(fulfillmentSvc)
	paymentHandler := handler.NewPaymentHandler(fulfillmentSvc)
	webhookHandler := handler.NewWebhookHandler(fulfillmentSvc, pool, cfg)
	payoutHandler := handler.NewPayoutHandler(payoutSvc, payoutRepo, earningsRepo)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)
	ticketHandler := handler.NewTicketHandler(ticketSvc, ticketRepo, libraryRepo, store)

	authMw := middleware.AuthRequired(&cfg.JWT)
	checkoutLimiter := middleware.NewInMemoryRateLimiter(cfg.RateLimit.CheckoutPerMin, time.Minute)
	webhookLimiter := middleware.NewInMemoryRateLimiter(cfg.RateLimit.WebhookPerMin, time.Minute)

	api := r.Group("/api/v1")
	{
		api.POST("/checkout", authMw, middleware.RateLimitByUser(checkoutLimiter), checkoutHandler.Create)
		api.GET("/payments/verify/:reference", authMw, paymentHandler.Verify)

		webhooks := api.Group("/webhooks", middleware.RateLimitByIP(webhookLimiter))
		{
			webhooks.POST("/paystack", webhookHandler.Paystack)
			webhooks.POST("/flutterwave", webhookHandler.Flutterwave)
		}

		payouts := api.Group("/payouts", authMw, middleware.RequireRole("SELLER", "ADMIN"))
		{
			payouts.POST("", payoutHandler.Create)
			payouts.GET("", payoutHandler.List)
			payouts.GET("/earnings", payoutHandler.Earnings)
		}

		api.GET("/library", authMw, ticketHandler.Library)
		api.GET("/tickets/:ticket_id", authMw, ticketHandler.Get)
		api.POST("/tickets/:ticket_id/verify", authMw, middleware.RequireRole("SELLER", "ADMIN"), ticketHandler.Verify)

		api.GET("/notifications", authMw, notificationHandler.List)
		api.POST("/notifications/:id/read", authMw, notificationHandler.MarkRead)
	}

	r.Static(cfg.Media.BaseURL, cfg.Media.Root)
	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	return r, pool
}
