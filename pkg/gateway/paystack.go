package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// PaystackProvider talks to the Paystack transaction and transfer APIs.
// Amounts are sent in subunits (kobo).
type PaystackProvider struct {
	BaseURL string
	client  *client
}

func NewPaystackProvider(baseURL, secretKey string, timeout time.Duration) *PaystackProvider {
	if baseURL == "" {
		baseURL = "https://api.paystack.co"
	}
	return &PaystackProvider{
		BaseURL: baseURL,
		client:  newClient(secretKey, timeout),
	}
}

func (p *PaystackProvider) Name() string { return "paystack" }

type paystackInitReq struct {
	Email       string `json:"email"`
	Amount      string `json:"amount"` // subunits
	Reference   string `json:"reference"`
	Currency    string `json:"currency,omitempty"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type paystackInitResp struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

func (p *PaystackProvider) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResponse, error) {
	payload := paystackInitReq{
		Email:       req.Email,
		Amount:      subunits(req.Amount),
		Reference:   req.Reference,
		Currency:    req.Currency,
		CallbackURL: req.CallbackURL,
	}
	status, body, err := p.client.doJSON(ctx, http.MethodPost, p.BaseURL+"/transaction/initialize", payload)
	if err != nil {
		return nil, err
	}
	var out paystackInitResp
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: unparseable initialize response", ErrProvider)
	}
	if status != http.StatusOK || !out.Status {
		return nil, fmt.Errorf("%w: initialize: %d %s", ErrProvider, status, out.Message)
	}
	return &InitializeResponse{
		AuthorizationURL: out.Data.AuthorizationURL,
		SessionID:        out.Data.AccessCode,
	}, nil
}

type paystackVerifyResp struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	} `json:"data"`
}

func (p *PaystackProvider) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	status, body, err := p.client.doJSON(ctx, http.MethodGet, p.BaseURL+"/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		return nil, err
	}
	var out paystackVerifyResp
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: unparseable verify response", ErrProvider)
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("%w: verify: unknown reference", ErrProvider)
	}
	if status != http.StatusOK || !out.Status {
		return nil, fmt.Errorf("%w: verify: %d %s", ErrProvider, status, out.Message)
	}
	return &VerifyResult{
		Status:        NormalizeStatus(out.Data.Status),
		ProviderTxnID: fmt.Sprintf("%d", out.Data.ID),
		Raw:           json.RawMessage(body),
	}, nil
}

type paystackTransferReq struct {
	Source    string `json:"source"`
	Amount    string `json:"amount"` // subunits
	Recipient string `json:"recipient"`
	Reference string `json:"reference"`
	Reason    string `json:"reason,omitempty"`
}

type paystackTransferResp struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		TransferCode string `json:"transfer_code"`
		Status       string `json:"status"`
	} `json:"data"`
}

func (p *PaystackProvider) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	recipient := req.RecipientCode
	if recipient == "" {
		var err error
		recipient, err = p.createRecipient(ctx, req)
		if err != nil {
			return nil, err
		}
	}
	payload := paystackTransferReq{
		Source:    "balance",
		Amount:    subunits(req.Amount),
		Recipient: recipient,
		Reference: req.OrderID,
		Reason:    req.Narration,
	}
	status, body, err := p.client.doJSON(ctx, http.MethodPost, p.BaseURL+"/transfer", payload)
	if err != nil {
		return nil, err
	}
	var out paystackTransferResp
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: unparseable transfer response", ErrProvider)
	}
	if status != http.StatusOK || !out.Status {
		return nil, fmt.Errorf("%w: transfer: %d %s", ErrProvider, status, out.Message)
	}
	result := &TransferResult{
		Status:     NormalizeStatus(out.Data.Status),
		TransferID: out.Data.TransferCode,
	}
	// Paystack reports transfers as "otp" or "pending" before settlement.
	if result.Status == StatusUnknown {
		log.Printf("[Paystack] transfer %s in intermediate state %q", req.OrderID, out.Data.Status)
		result.Status = StatusPending
	}
	return result, nil
}

type paystackRecipientReq struct {
	Type          string `json:"type"`
	Name          string `json:"name"`
	AccountNumber string `json:"account_number"`
	BankCode      string `json:"bank_code"`
	Currency      string `json:"currency,omitempty"`
}

type paystackRecipientResp struct {
	Status bool `json:"status"`
	Data   struct {
		RecipientCode string `json:"recipient_code"`
	} `json:"data"`
}

func (p *PaystackProvider) createRecipient(ctx context.Context, req TransferRequest) (string, error) {
	payload := paystackRecipientReq{
		Type:          "nuban",
		Name:          req.AccountName,
		AccountNumber: req.AccountNumber,
		BankCode:      req.BankCode,
		Currency:      req.Currency,
	}
	status, body, err := p.client.doJSON(ctx, http.MethodPost, p.BaseURL+"/transferrecipient", payload)
	if err != nil {
		return "", err
	}
	var out paystackRecipientResp
	if err := json.Unmarshal(body, &out); err != nil || status != http.StatusCreated && status != http.StatusOK || !out.Status {
		return "", fmt.Errorf("%w: transfer recipient: %d", ErrProvider, status)
	}
	return out.Data.RecipientCode, nil
}

// subunits converts a major-unit amount to the integer subunit string the
// gateway expects (e.g. 115.00 -> "11500").
func subunits(amount decimal.Decimal) string {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).String()
}
