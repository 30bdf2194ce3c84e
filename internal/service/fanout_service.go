package service

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"darra/internal/domain"
	"darra/internal/models"
	"darra/internal/repository"
	"darra/pkg/tickets"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FanoutService runs the side effects of a confirmed payment: commissions,
// library provisioning, earnings refresh, ticket rows and assets, and
// notifications. Stages are individually idempotent; a stage failure is
// collected and later stages still run, so a retry only redoes what is
// missing. The one exception is inventory exhaustion, which fails the
// payment outright.
type FanoutService struct {
	db          *gorm.DB
	payments    *repository.PaymentRepository
	products    *repository.ProductRepository
	ticketRepo  *repository.TicketRepository
	outbox      *repository.OutboxRepository
	users       *repository.UserRepository
	ledger      *LedgerService
	library     *LibraryService
	notifier    *NotificationService
	store       *tickets.Store

	// RefundHook fires when a payment confirmed by the gateway has to be
	// failed locally (oversold tier). The refund itself is handled outside
	// this service.
	RefundHook func(payment *models.Payment, reason string)
}

func NewFanoutService(
	db *gorm.DB,
	payments *repository.PaymentRepository,
	products *repository.ProductRepository,
	ticketRepo *repository.TicketRepository,
	outbox *repository.OutboxRepository,
	users *repository.UserRepository,
	ledger *LedgerService,
	library *LibraryService,
	notifier *NotificationService,
	store *tickets.Store,
) *FanoutService {
	return &FanoutService{
		db:         db,
		payments:   payments,
		products:   products,
		ticketRepo: ticketRepo,
		outbox:     outbox,
		users:      users,
		ledger:     ledger,
		library:    library,
		notifier:   notifier,
		store:      store,
		RefundHook: func(p *models.Payment, reason string) {
			log.Printf("[Fanout] refund needed for %s: %s", p.Reference, reason)
		},
	}
}

// Run claims the outbox row for a reference and executes the fanout. A row
// already claimed or finished is skipped, so concurrent workers and
// duplicate handoffs do no duplicate work.
func (s *FanoutService) Run(reference string) error {
	claimed, err := s.outbox.Claim(reference)
	if err != nil {
		return fmt.Errorf("claim %s: %w", reference, err)
	}
	if !claimed {
		return nil
	}

	payment, err := s.payments.GetByReference(reference)
	if err != nil {
		return s.outbox.Finish(reference, domain.OutboxPartial, "load", err.Error())
	}
	if payment.Status != domain.PaymentSuccess {
		// A previous run failed this payment (oversell); nothing left to do.
		return s.outbox.Finish(reference, domain.OutboxCompleted, "load", "")
	}
	purchases, err := s.payments.Purchases(payment.ID)
	if err != nil {
		return s.outbox.Finish(reference, domain.OutboxPartial, "load", err.Error())
	}

	var stageErrs []string
	collect := func(stage string, err error) {
		log.Printf("[Fanout] %s stage %s: %v", reference, stage, err)
		stageErrs = append(stageErrs, fmt.Sprintf("%s: %v", stage, err))
	}

	// Stage 1: commissions, inventory and library for every purchase, in one
	// transaction. A sold-out tier on any line rolls back the whole order, so
	// a failed payment never keeps entitlements from its other lines.
	var oversold *models.Purchase
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for i := range purchases {
			if err := s.settlePurchase(tx, payment, &purchases[i]); err != nil {
				if errors.Is(err, domain.ErrInventoryExhausted) {
					oversold = &purchases[i]
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		if oversold != nil {
			return s.failOversold(payment, oversold, err)
		}
		collect("ledger", err)
	}

	// Stage 2: earnings aggregates per distinct seller.
	for _, sellerID := range distinctSellers(purchases) {
		if err := s.ledger.RefreshEarnings(sellerID); err != nil {
			collect("earnings", err)
		}
	}

	// Stage 3: ticket rows, then assets. Rows are required (exactly quantity
	// per event purchase); assets may lag and are retried by the sweep.
	for i := range purchases {
		if purchases[i].Product.Kind != domain.ProductKindEvent {
			continue
		}
		if err := s.issueTickets(payment, &purchases[i]); err != nil {
			collect("tickets", err)
		}
	}

	// Stage 4: notifications.
	for _, err := range s.notifyConfirmed(payment, purchases) {
		collect("notify", err)
	}

	if len(stageErrs) > 0 {
		return s.outbox.Finish(reference, domain.OutboxPartial, "fanout", strings.Join(stageErrs, "; "))
	}
	return s.outbox.Finish(reference, domain.OutboxCompleted, "fanout", "")
}

// settlePurchase creates the commission and library entries for one purchase
// inside the caller's transaction. The tier sold counter is incremented only
// when the commission is first created, which keeps the increment
// exactly-once across retries.
func (s *FanoutService) settlePurchase(tx *gorm.DB, payment *models.Payment, purchase *models.Purchase) error {
	_, created, err := s.ledger.CreateCommission(tx, purchase, purchase.Product.SellerID)
	if err != nil {
		return err
	}
	if created && purchase.Product.Kind == domain.ProductKindEvent && purchase.TierID != nil {
		tier, err := s.products.WithTx(tx).GetTierForUpdate(*purchase.TierID)
		if err != nil {
			return err
		}
		if tier.Remaining() < purchase.Quantity {
			return fmt.Errorf("%w: tier %d has %d left, purchase wants %d",
				domain.ErrInventoryExhausted, tier.ID, tier.Remaining(), purchase.Quantity)
		}
		tier.QuantitySold += purchase.Quantity
		if err := s.products.WithTx(tx).UpdateTierSold(tier); err != nil {
			return err
		}
	}
	return s.library.ProvisionPurchase(tx, payment.BuyerID, purchase)
}

// failOversold flips a gateway-confirmed payment to FAILED because the tier
// sold out before settlement, notifies the buyer, and invokes the refund
// hook. Money received is otherwise never un-done; this is the one case
// where local state overrides the gateway.
func (s *FanoutService) failOversold(payment *models.Payment, purchase *models.Purchase, cause error) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		p, err := s.payments.WithTx(tx).GetByReferenceForUpdate(payment.Reference)
		if err != nil {
			return err
		}
		p.Status = domain.PaymentFailed
		return s.payments.WithTx(tx).Update(p)
	})
	if err != nil {
		return s.outbox.Finish(payment.Reference, domain.OutboxPartial, "oversell", err.Error())
	}
	payment.Status = domain.PaymentFailed
	log.Printf("[Fanout] %s failed: %v", payment.Reference, cause)
	nerr := s.notifier.Notify(payment.BuyerID, domain.NotifPayment,
		"Order could not be completed",
		fmt.Sprintf("Your payment %s was received but %q sold out before your order could be filled. A refund is being arranged.",
			payment.Reference, purchase.Product.Name),
		map[string]interface{}{"reference": payment.Reference},
		dedupKey(payment.Reference, domain.NotifPayment, "oversell", payment.BuyerID))
	if nerr != nil {
		log.Printf("[Fanout] oversell notify: %v", nerr)
	}
	if s.RefundHook != nil {
		s.RefundHook(payment, cause.Error())
	}
	return s.outbox.Finish(payment.Reference, domain.OutboxCompleted, "oversell", cause.Error())
}

// issueTickets guarantees exactly quantity ticket rows for an event
// purchase, then renders assets for any ticket still missing them. Render
// failures leave the row in place for the retry sweep.
func (s *FanoutService) issueTickets(payment *models.Payment, purchase *models.Purchase) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.ticketRepo.WithTx(tx)
		existing, err := repo.CountByPurchase(purchase.ID)
		if err != nil {
			return err
		}
		for i := existing; i < int64(purchase.Quantity); i++ {
			t := &models.Ticket{
				TicketID:   uuid.New().String(),
				PurchaseID: purchase.ID,
				BuyerID:    payment.BuyerID,
				ProductID:  purchase.ProductID,
			}
			if err := repo.Create(t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	list, err := s.ticketRepo.ListByPurchase(purchase.ID)
	if err != nil {
		return err
	}
	var renderErrs []string
	for i := range list {
		if list[i].PNGPath != "" && list[i].QRPath != "" {
			continue
		}
		if err := s.renderAssets(&list[i], &purchase.Product, payment.BuyerID); err != nil {
			renderErrs = append(renderErrs, fmt.Sprintf("ticket %s: %v", list[i].TicketID, err))
		}
	}
	if len(renderErrs) > 0 {
		return errors.New(strings.Join(renderErrs, "; "))
	}
	return nil
}

// renderAssets runs outside any DB transaction.
func (s *FanoutService) renderAssets(t *models.Ticket, product *models.Product, buyerID uint) error {
	buyerName := ""
	if u, err := s.users.GetByID(buyerID); err == nil {
		buyerName = u.Name
	}
	data := tickets.TicketData{
		TicketID:  t.TicketID,
		EventID:   product.ID,
		EventName: product.Name,
		Venue:     product.Venue,
		BuyerName: buyerName,
		IssuedAt:  t.CreatedAt,
	}
	qrBytes, err := tickets.RenderQR(t.TicketID, product.ID, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("render qr: %w", err)
	}
	pngBytes, err := tickets.RenderTicket(data)
	if err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	qrPath, err := s.store.SaveQR(t.TicketID, qrBytes)
	if err != nil {
		return err
	}
	pngPath, err := s.store.SaveTicket(t.TicketID, pngBytes)
	if err != nil {
		return err
	}
	return s.ticketRepo.SetAssetPaths(t.ID, pngPath, qrPath)
}

// RetryMissingAssets re-renders assets for tickets that still lack them.
// Called by the worker sweep.
func (s *FanoutService) RetryMissingAssets(limit int) {
	list, err := s.ticketRepo.ListMissingAssets(limit)
	if err != nil {
		log.Printf("[Fanout] asset sweep: %v", err)
		return
	}
	for i := range list {
		if err := s.renderAssets(&list[i], &list[i].Product, list[i].BuyerID); err != nil {
			log.Printf("[Fanout] asset retry %s: %v", list[i].TicketID, err)
		}
	}
}

// notifyConfirmed sends the buyer payment notification, one order
// notification per seller purchase, and one ticket notification per event.
// Dedup keys make every send idempotent.
func (s *FanoutService) notifyConfirmed(payment *models.Payment, purchases []models.Purchase) []error {
	var errs []error
	err := s.notifier.Notify(payment.BuyerID, domain.NotifPayment,
		"Payment confirmed",
		fmt.Sprintf("Your payment of %s %s was successful.", payment.Currency, payment.Amount.StringFixed(2)),
		map[string]interface{}{"reference": payment.Reference, "amount": payment.Amount},
		dedupKey(payment.Reference, domain.NotifPayment, "buyer", payment.BuyerID))
	if err != nil {
		errs = append(errs, err)
	}

	for i := range purchases {
		p := &purchases[i]
		err := s.notifier.Notify(p.Product.SellerID, domain.NotifOrder,
			"New order",
			fmt.Sprintf("You sold %d x %s for %s %s.", p.Quantity, p.Product.Name, payment.Currency, p.TotalPrice.StringFixed(2)),
			map[string]interface{}{"reference": payment.Reference, "purchase_id": p.ID},
			dedupKey(payment.Reference, domain.NotifOrder, "purchase", p.ID))
		if err != nil {
			errs = append(errs, err)
		}
	}

	seen := map[uint]bool{}
	for i := range purchases {
		p := &purchases[i]
		if p.Product.Kind != domain.ProductKindEvent || seen[p.ProductID] {
			continue
		}
		seen[p.ProductID] = true
		err := s.notifier.Notify(payment.BuyerID, domain.NotifEventTicket,
			"Your tickets are ready",
			fmt.Sprintf("Your tickets for %s are in your library.", p.Product.Name),
			map[string]interface{}{"reference": payment.Reference, "product_id": p.ProductID},
			dedupKey(payment.Reference, domain.NotifEventTicket, "event", p.ProductID))
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func dedupKey(reference, notifType, target string, id uint) string {
	return fmt.Sprintf("%s:%s:%s:%d", reference, notifType, target, id)
}

func distinctSellers(purchases []models.Purchase) []uint {
	seen := map[uint]bool{}
	var out []uint
	for i := range purchases {
		id := purchases[i].Product.SellerID
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
