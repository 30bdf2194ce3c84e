package service

import (
	"errors"
	"fmt"
	"time"

	"darra/internal/domain"
	"darra/internal/models"
	"darra/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerService owns commissions, seller earnings aggregates and payout
// requests. All writes to a seller's aggregates serialize on the
// seller_earnings row lock.
type LedgerService struct {
	db          *gorm.DB
	commissions *repository.CommissionRepository
	earnings    *repository.EarningsRepository
	payouts     *repository.PayoutRepository
	banks       *repository.BankAccountRepository
	rate        decimal.Decimal
	minPayout   decimal.Decimal
}

func NewLedgerService(
	db *gorm.DB,
	commissions *repository.CommissionRepository,
	earnings *repository.EarningsRepository,
	payouts *repository.PayoutRepository,
	banks *repository.BankAccountRepository,
	rate, minPayout decimal.Decimal,
) *LedgerService {
	return &LedgerService{
		db:          db,
		commissions: commissions,
		earnings:    earnings,
		payouts:     payouts,
		banks:       banks,
		rate:        rate,
		minPayout:   minPayout,
	}
}

// Split computes the commission and seller payout for a gross amount.
// Banker's rounding to 2 decimal places.
func (s *LedgerService) Split(gross decimal.Decimal) (commission, payout decimal.Decimal) {
	commission = gross.Mul(s.rate).RoundBank(2)
	payout = gross.Sub(commission)
	return commission, payout
}

// CreateCommission records the commission for a purchase. Idempotent: the
// purchase_id unique index means a second call returns the existing row.
// The created flag reports whether this call inserted it, so one-time side
// effects (the tier sold counter) can key off it.
func (s *LedgerService) CreateCommission(tx *gorm.DB, purchase *models.Purchase, sellerID uint) (*models.Commission, bool, error) {
	repo := s.commissions.WithTx(tx)
	existing, err := repo.GetByPurchaseID(purchase.ID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	commission, payout := s.Split(purchase.TotalPrice)
	c := &models.Commission{
		SellerID:         sellerID,
		PurchaseID:       purchase.ID,
		Gross:            purchase.TotalPrice,
		CommissionAmount: commission,
		SellerPayout:     payout,
		Status:           domain.CommissionPending,
	}
	if err := repo.Create(c); err != nil {
		// Lost a race on the unique index; the winner's row is the answer.
		if existing, gerr := repo.GetByPurchaseID(purchase.ID); gerr == nil {
			return existing, false, nil
		}
		return nil, false, err
	}
	return c, true, nil
}

// RefreshEarnings recomputes the seller's aggregates from primary tables
// under the per-seller row lock.
func (s *LedgerService) RefreshEarnings(sellerID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.refreshEarningsTx(tx, sellerID)
	})
}

func (s *LedgerService) refreshEarningsTx(tx *gorm.DB, sellerID uint) error {
	e, err := s.earnings.WithTx(tx).GetOrCreateForUpdate(sellerID)
	if err != nil {
		return fmt.Errorf("lock earnings for seller %d: %w", sellerID, err)
	}
	totals, err := s.commissions.WithTx(tx).TotalsBySeller(sellerID)
	if err != nil {
		return err
	}
	paidOut, err := s.payouts.WithTx(tx).SumCompleted(sellerID)
	if err != nil {
		return err
	}
	e.TotalSales = totals.Gross
	e.TotalCommission = totals.Commission
	e.TotalPayouts = paidOut
	e.AvailableBalance = totals.Gross.Sub(totals.Commission).Sub(paidOut)
	return s.earnings.WithTx(tx).Save(e)
}

// OpenPayout validates and creates a pending payout request. The available
// balance is read fresh under the earnings row lock, so concurrent requests
// cannot both pass the balance check.
func (s *LedgerService) OpenPayout(sellerID uint, amount decimal.Decimal, bankAccountID uint) (*models.PayoutRequest, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: payout amount must be positive", domain.ErrValidation)
	}
	if amount.LessThan(s.minPayout) {
		return nil, fmt.Errorf("%w: payout amount below minimum of %s", domain.ErrValidation, s.minPayout)
	}
	bank, err := s.banks.GetForUser(bankAccountID, sellerID)
	if err != nil {
		return nil, fmt.Errorf("%w: bank account does not belong to seller", domain.ErrValidation)
	}
	var payout *models.PayoutRequest
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.refreshEarningsTx(tx, sellerID); err != nil {
			return err
		}
		e, err := s.earnings.WithTx(tx).GetBySellerID(sellerID)
		if err != nil {
			return err
		}
		if e.AvailableBalance.LessThan(amount) {
			return fmt.Errorf("%w: available %s, requested %s", domain.ErrInsufficientBalance, e.AvailableBalance, amount)
		}
		payout = &models.PayoutRequest{
			SellerID:      sellerID,
			OrderID:       "po-" + uuid.New().String(),
			Amount:        amount,
			BankAccountID: bank.ID,
			Status:        domain.PayoutPending,
		}
		return s.payouts.WithTx(tx).Create(payout)
	})
	if err != nil {
		return nil, err
	}
	payout.BankAccount = *bank
	return payout, nil
}

// ClosePayout records the terminal outcome of a payout and, on completion,
// refreshes the seller's aggregates in the same transaction.
func (s *LedgerService) ClosePayout(payout *models.PayoutRequest, completed bool, transferRef, failureReason string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		payout.ProcessedAt = &now
		if completed {
			payout.Status = domain.PayoutCompleted
			payout.TransferReference = transferRef
		} else {
			payout.Status = domain.PayoutFailed
			payout.FailureReason = failureReason
		}
		if err := s.payouts.WithTx(tx).Update(payout); err != nil {
			return err
		}
		if completed {
			return s.refreshEarningsTx(tx, payout.SellerID)
		}
		return nil
	})
}
