package service

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"darra/config"
	"darra/internal/domain"
	"darra/internal/models"
	"darra/internal/repository"
	"darra/pkg/gateway"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FulfillmentService is the state machine for a payment's lifecycle:
// checkout creates it, verify and webhooks move it to a terminal status,
// and a SUCCESS transition enqueues the fanout exactly once.
type FulfillmentService struct {
	db        *gorm.DB
	payments  *repository.PaymentRepository
	products  *repository.ProductRepository
	users     *repository.UserRepository
	outbox    *repository.OutboxRepository
	providers map[string]gateway.Provider
	cfg       *config.MarketplaceConfig
}

func NewFulfillmentService(
	db *gorm.DB,
	payments *repository.PaymentRepository,
	products *repository.ProductRepository,
	users *repository.UserRepository,
	outbox *repository.OutboxRepository,
	providers map[string]gateway.Provider,
	cfg *config.MarketplaceConfig,
) *FulfillmentService {
	return &FulfillmentService{
		db:        db,
		payments:  payments,
		products:  products,
		users:     users,
		outbox:    outbox,
		providers: providers,
		cfg:       cfg,
	}
}

type CheckoutItem struct {
	ProductID uint  `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,min=1"`
	TierID    *uint `json:"tier_id"`
}

type CheckoutResult struct {
	PaymentReference string `json:"payment_reference"`
	AuthorizationURL string `json:"authorization_url"`
	Provider         string `json:"provider"`
}

func (s *FulfillmentService) provider(name string) (gateway.Provider, error) {
	if name == "" {
		name = s.cfg.DefaultProvider
	}
	p, ok := s.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown payment provider %q", domain.ErrValidation, name)
	}
	return p, nil
}

// NewReference generates the external payment reference the gateway echoes
// back in webhooks and verifications.
func (s *FulfillmentService) NewReference() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return s.cfg.ReferencePrefix + hex.EncodeToString(b)
}

// Checkout prices the cart server-side, writes the payment and its
// purchases in one transaction, and only then initializes the gateway
// session. An initialize failure leaves a recoverable Pending payment.
func (s *FulfillmentService) Checkout(ctx context.Context, buyerID uint, items []CheckoutItem, providerName string) (*CheckoutResult, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: empty cart", domain.ErrValidation)
	}
	provider, err := s.provider(providerName)
	if err != nil {
		return nil, err
	}
	buyer, err := s.users.GetByID(buyerID)
	if err != nil {
		return nil, fmt.Errorf("%w: buyer %d", domain.ErrNotFound, buyerID)
	}

	// Server-authoritative pricing: client prices are never trusted.
	var purchases []models.Purchase
	total := decimal.Zero
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be at least 1", domain.ErrValidation)
		}
		product, err := s.products.GetByID(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: product %d", domain.ErrNotFound, item.ProductID)
		}
		unitPrice := product.Price
		if product.Kind == domain.ProductKindEvent {
			if item.TierID == nil {
				return nil, fmt.Errorf("%w: event product %d requires a ticket tier", domain.ErrValidation, product.ID)
			}
			tier, err := s.products.GetTier(*item.TierID)
			if err != nil || tier.ProductID != product.ID {
				return nil, fmt.Errorf("%w: tier %d does not belong to product %d", domain.ErrValidation, *item.TierID, product.ID)
			}
			if tier.Remaining() < item.Quantity {
				return nil, fmt.Errorf("%w: tier %d has only %d left", domain.ErrValidation, tier.ID, tier.Remaining())
			}
			unitPrice = tier.Price
		} else if item.TierID != nil {
			return nil, fmt.Errorf("%w: product %d does not have ticket tiers", domain.ErrValidation, product.ID)
		}
		lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		purchases = append(purchases, models.Purchase{
			ProductID:  product.ID,
			TierID:     item.TierID,
			Quantity:   item.Quantity,
			UnitPrice:  unitPrice,
			TotalPrice: lineTotal,
		})
		total = total.Add(lineTotal)
	}

	payment := &models.Payment{
		Reference: s.NewReference(),
		BuyerID:   buyerID,
		Currency:  s.cfg.Currency,
		Amount:    total,
		Provider:  provider.Name(),
		Status:    domain.PaymentPending,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.payments.WithTx(tx).Create(payment); err != nil {
			return err
		}
		for i := range purchases {
			purchases[i].PaymentID = payment.ID
		}
		return tx.Create(&purchases).Error
	})
	if err != nil {
		return nil, fmt.Errorf("checkout write: %w", err)
	}

	// External call strictly after commit; a DB transaction is never held
	// across gateway HTTP.
	initResp, err := provider.Initialize(ctx, gateway.InitializeRequest{
		Reference: payment.Reference,
		Email:     buyer.Email,
		Amount:    total,
		Currency:  payment.Currency,
	})
	if err != nil {
		log.Printf("[Fulfillment] initialize %s: %v", payment.Reference, err)
		return &CheckoutResult{PaymentReference: payment.Reference, Provider: provider.Name()},
			fmt.Errorf("%w: gateway initialize failed", domain.ErrTransient)
	}
	return &CheckoutResult{
		PaymentReference: payment.Reference,
		AuthorizationURL: initResp.AuthorizationURL,
		Provider:         provider.Name(),
	}, nil
}

// Verify is the synchronous confirmation path. A terminal payment returns
// immediately; otherwise the gateway is consulted outside any transaction
// and the result drives the transition.
func (s *FulfillmentService) Verify(ctx context.Context, reference string) (*models.Payment, error) {
	payment, err := s.payments.GetByReference(reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: payment %s", domain.ErrNotFound, reference)
		}
		return nil, err
	}
	if domain.PaymentTerminal(payment.Status) {
		return payment, nil
	}
	provider, err := s.provider(payment.Provider)
	if err != nil {
		return nil, err
	}
	result, err := provider.Verify(ctx, reference)
	if err != nil {
		// Payment stays Pending; the next verify or webhook resolves it.
		log.Printf("[Fulfillment] verify %s: %v", reference, err)
		return payment, fmt.Errorf("%w: verification unavailable", domain.ErrTransient)
	}
	return s.Transition(reference, result.Status, result.ProviderTxnID)
}

// WebhookEvent is the provider-agnostic result of parsing a webhook body.
type WebhookEvent struct {
	Reference     string
	Status        gateway.Status
	ProviderTxnID string
}

// ParseWebhook extracts the reference and normalized status from a raw
// webhook payload. Paystack nests everything under data; Flutterwave puts
// tx_ref and status at the top level or under data depending on event age.
func ParseWebhook(providerName string, body []byte) (*WebhookEvent, error) {
	switch providerName {
	case "paystack":
		var payload struct {
			Event string `json:"event"`
			Data  struct {
				Reference string `json:"reference"`
				Status    string `json:"status"`
				ID        int64  `json:"id"`
			} `json:"data"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, fmt.Errorf("%w: invalid json", domain.ErrValidation)
		}
		if payload.Data.Reference == "" {
			return nil, fmt.Errorf("%w: missing reference", domain.ErrValidation)
		}
		return &WebhookEvent{
			Reference:     payload.Data.Reference,
			Status:        gateway.NormalizeStatus(payload.Data.Status),
			ProviderTxnID: fmt.Sprintf("%d", payload.Data.ID),
		}, nil
	case "flutterwave":
		var payload struct {
			TxRef  string `json:"tx_ref"`
			Status string `json:"status"`
			Data   struct {
				TxRef  string `json:"tx_ref"`
				Status string `json:"status"`
				ID     int64  `json:"id"`
			} `json:"data"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, fmt.Errorf("%w: invalid json", domain.ErrValidation)
		}
		ref := payload.TxRef
		if ref == "" {
			ref = payload.Data.TxRef
		}
		if ref == "" {
			return nil, fmt.Errorf("%w: missing tx_ref", domain.ErrValidation)
		}
		status := payload.Status
		if status == "" {
			status = payload.Data.Status
		}
		return &WebhookEvent{
			Reference:     ref,
			Status:        gateway.NormalizeStatus(status),
			ProviderTxnID: fmt.Sprintf("%d", payload.Data.ID),
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", domain.ErrValidation, providerName)
	}
}

// HandleWebhook applies a parsed webhook event. Late or duplicate
// deliveries are idempotent no-ops; a Failed report after Success is
// ignored and logged as an anomaly.
func (s *FulfillmentService) HandleWebhook(event *WebhookEvent) (*models.Payment, error) {
	return s.Transition(event.Reference, event.Status, event.ProviderTxnID)
}

// Transition moves a payment out of Pending under a row lock and, on
// Success, enqueues the fanout outbox row in the same transaction. A
// Pending or Unknown status leaves the payment untouched for a later
// verify or human reconciliation.
func (s *FulfillmentService) Transition(reference string, status gateway.Status, providerTxnID string) (*models.Payment, error) {
	var payment *models.Payment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		p, err := s.payments.WithTx(tx).GetByReferenceForUpdate(reference)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: payment %s", domain.ErrNotFound, reference)
			}
			return err
		}
		payment = p
		if domain.PaymentTerminal(p.Status) {
			if status == gateway.StatusFailed && p.Status == domain.PaymentSuccess {
				log.Printf("[Fulfillment] anomaly: %s reported failed after success", reference)
			}
			return domain.ErrAlreadyFinal
		}
		switch status {
		case gateway.StatusSuccess:
			p.Status = domain.PaymentSuccess
			p.ProviderTxnID = providerTxnID
			if err := s.payments.WithTx(tx).Update(p); err != nil {
				return err
			}
			return s.outbox.WithTx(tx).Enqueue(reference)
		case gateway.StatusFailed:
			p.Status = domain.PaymentFailed
			p.ProviderTxnID = providerTxnID
			return s.payments.WithTx(tx).Update(p)
		default:
			// Pending or Unknown: stays Pending.
			return nil
		}
	})
	if errors.Is(err, domain.ErrAlreadyFinal) {
		return payment, nil
	}
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// VerifyPaystackSignature checks the x-paystack-signature header: an
// HMAC-SHA512 of the raw body keyed with the secret key.
func VerifyPaystackSignature(body []byte, signature, secret string) bool {
	if secret == "" {
		return true
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}

// VerifyFlutterwaveSignature checks the verif-hash header against the
// configured webhook hash.
func VerifyFlutterwaveSignature(header, hash string) bool {
	if hash == "" {
		return true
	}
	return hmac.Equal([]byte(header), []byte(hash))
}
