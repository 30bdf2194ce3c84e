package service

import (
	"context"
	"fmt"
	"log"

	"darra/internal/domain"
	"darra/internal/models"
	"darra/pkg/gateway"

	"github.com/shopspring/decimal"
)

// PayoutService drives a payout request through the gateway: open the
// request under the ledger's balance check, execute the transfer, record
// the terminal outcome. No DB transaction is held across the transfer call.
type PayoutService struct {
	ledger          *LedgerService
	providers       map[string]gateway.Provider
	defaultProvider string
	currency        string
}

func NewPayoutService(ledger *LedgerService, providers map[string]gateway.Provider, defaultProvider, currency string) *PayoutService {
	return &PayoutService{
		ledger:          ledger,
		providers:       providers,
		defaultProvider: defaultProvider,
		currency:        currency,
	}
}

// RequestPayout opens and executes a payout. On gateway failure the
// request is closed as Failed; on a pending transfer it stays Pending for
// later reconciliation.
func (s *PayoutService) RequestPayout(ctx context.Context, sellerID uint, amount decimal.Decimal, bankAccountID uint) (*models.PayoutRequest, error) {
	payout, err := s.ledger.OpenPayout(sellerID, amount, bankAccountID)
	if err != nil {
		return nil, err
	}
	provider, ok := s.providers[s.defaultProvider]
	if !ok {
		return payout, fmt.Errorf("%w: no payout provider configured", domain.ErrTransient)
	}

	result, err := provider.Transfer(ctx, gateway.TransferRequest{
		OrderID:       payout.OrderID,
		Amount:        payout.Amount,
		Currency:      s.currency,
		BankCode:      payout.BankAccount.BankCode,
		AccountNumber: payout.BankAccount.AccountNumber,
		AccountName:   payout.BankAccount.AccountName,
		RecipientCode: payout.BankAccount.RecipientCode,
		Narration:     "Darra seller payout",
	})
	if err != nil {
		log.Printf("[Payout] transfer %s: %v", payout.OrderID, err)
		if cerr := s.ledger.ClosePayout(payout, false, "", err.Error()); cerr != nil {
			log.Printf("[Payout] close %s: %v", payout.OrderID, cerr)
		}
		return payout, fmt.Errorf("%w: transfer failed", domain.ErrTransient)
	}

	switch result.Status {
	case gateway.StatusSuccess:
		if err := s.ledger.ClosePayout(payout, true, result.TransferID, ""); err != nil {
			return payout, err
		}
	case gateway.StatusFailed:
		if err := s.ledger.ClosePayout(payout, false, result.TransferID, "gateway reported failure"); err != nil {
			return payout, err
		}
	default:
		// Transfer is in flight; leave the request Pending.
		payout.TransferReference = result.TransferID
	}
	return payout, nil
}
