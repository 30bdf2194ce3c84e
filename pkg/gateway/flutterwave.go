package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// FlutterwaveProvider talks to the Flutterwave v3 payments and transfers
// APIs. Amounts are sent in major units.
type FlutterwaveProvider struct {
	BaseURL string
	client  *client
}

func NewFlutterwaveProvider(baseURL, secretKey string, timeout time.Duration) *FlutterwaveProvider {
	if baseURL == "" {
		baseURL = "https://api.flutterwave.com"
	}
	return &FlutterwaveProvider{
		BaseURL: baseURL,
		client:  newClient(secretKey, timeout),
	}
}

func (p *FlutterwaveProvider) Name() string { return "flutterwave" }

type flutterwaveInitReq struct {
	TxRef       string                 `json:"tx_ref"`
	Amount      string                 `json:"amount"`
	Currency    string                 `json:"currency,omitempty"`
	RedirectURL string                 `json:"redirect_url,omitempty"`
	Customer    map[string]interface{} `json:"customer"`
}

type flutterwaveInitResp struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Link string `json:"link"`
	} `json:"data"`
}

func (p *FlutterwaveProvider) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResponse, error) {
	payload := flutterwaveInitReq{
		TxRef:       req.Reference,
		Amount:      req.Amount.StringFixed(2),
		Currency:    req.Currency,
		RedirectURL: req.CallbackURL,
		Customer:    map[string]interface{}{"email": req.Email},
	}
	status, body, err := p.client.doJSON(ctx, http.MethodPost, p.BaseURL+"/v3/payments", payload)
	if err != nil {
		return nil, err
	}
	var out flutterwaveInitResp
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: unparseable payments response", ErrProvider)
	}
	if status != http.StatusOK || out.Status != "success" {
		return nil, fmt.Errorf("%w: payments: %d %s", ErrProvider, status, out.Message)
	}
	return &InitializeResponse{
		AuthorizationURL: out.Data.Link,
		SessionID:        req.Reference,
	}, nil
}

type flutterwaveVerifyResp struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	} `json:"data"`
}

func (p *FlutterwaveProvider) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	endpoint := p.BaseURL + "/v3/transactions/verify_by_reference?tx_ref=" + url.QueryEscape(reference)
	status, body, err := p.client.doJSON(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var out flutterwaveVerifyResp
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: unparseable verify response", ErrProvider)
	}
	if status != http.StatusOK || out.Status != "success" {
		return nil, fmt.Errorf("%w: verify: %d %s", ErrProvider, status, out.Message)
	}
	return &VerifyResult{
		Status:        NormalizeStatus(out.Data.Status),
		ProviderTxnID: fmt.Sprintf("%d", out.Data.ID),
		Raw:           json.RawMessage(body),
	}, nil
}

type flutterwaveTransferReq struct {
	AccountBank   string `json:"account_bank"`
	AccountNumber string `json:"account_number"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency,omitempty"`
	Reference     string `json:"reference"`
	Narration     string `json:"narration,omitempty"`
}

type flutterwaveTransferResp struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	} `json:"data"`
}

func (p *FlutterwaveProvider) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	payload := flutterwaveTransferReq{
		AccountBank:   req.BankCode,
		AccountNumber: req.AccountNumber,
		Amount:        req.Amount.StringFixed(2),
		Currency:      req.Currency,
		Reference:     req.OrderID,
		Narration:     req.Narration,
	}
	status, body, err := p.client.doJSON(ctx, http.MethodPost, p.BaseURL+"/v3/transfers", payload)
	if err != nil {
		return nil, err
	}
	var out flutterwaveTransferResp
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: unparseable transfers response", ErrProvider)
	}
	if status != http.StatusOK || out.Status != "success" {
		return nil, fmt.Errorf("%w: transfers: %d %s", ErrProvider, status, out.Message)
	}
	result := &TransferResult{
		Status:     NormalizeStatus(out.Data.Status),
		TransferID: fmt.Sprintf("%d", out.Data.ID),
	}
	if result.Status == StatusUnknown {
		result.Status = StatusPending
	}
	return result, nil
}
