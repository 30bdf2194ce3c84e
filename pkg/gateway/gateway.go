package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the normalized payment status. Provider vocabularies are
// interpreted in NormalizeStatus and nowhere else.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
	StatusPending Status = "PENDING"
	StatusUnknown Status = "UNKNOWN"
)

// NormalizeStatus maps a provider status string to the shared vocabulary.
func NormalizeStatus(s string) Status {
	switch s {
	case "success", "successful":
		return StatusSuccess
	case "failed", "abandoned", "reversed":
		return StatusFailed
	case "pending", "ongoing":
		return StatusPending
	default:
		return StatusUnknown
	}
}

var (
	ErrNetwork  = errors.New("gateway network error")
	ErrProvider = errors.New("gateway provider error")
	ErrConfig   = errors.New("gateway not configured")
)

type InitializeRequest struct {
	Reference   string
	Email       string
	Amount      decimal.Decimal
	Currency    string
	CallbackURL string
}

type InitializeResponse struct {
	AuthorizationURL string
	SessionID        string
}

type VerifyResult struct {
	Status        Status
	ProviderTxnID string
	Raw           json.RawMessage
}

type TransferRequest struct {
	OrderID       string
	Amount        decimal.Decimal
	Currency      string
	BankCode      string
	AccountNumber string
	AccountName   string
	RecipientCode string
	Narration     string
}

type TransferResult struct {
	Status     Status
	TransferID string
}

// Provider is a stateless adapter over one external payment gateway.
// Verify and Transfer never mutate local state.
type Provider interface {
	Name() string
	Initialize(ctx context.Context, req InitializeRequest) (*InitializeResponse, error)
	Verify(ctx context.Context, reference string) (*VerifyResult, error)
	Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error)
}

// client wraps an http.Client with bearer auth and a single retry with
// jitter on network errors. Provider-reported errors are never retried.
type client struct {
	http      *http.Client
	secretKey string
}

func newClient(secretKey string, timeout time.Duration) *client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &client{
		http:      &http.Client{Timeout: timeout},
		secretKey: secretKey,
	}
}

func (c *client) doJSON(ctx context.Context, method, url string, payload interface{}) (int, []byte, error) {
	if c.secretKey == "" {
		return 0, nil, ErrConfig
	}
	var body []byte
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		body = b
	}
	status, resp, err := c.attempt(ctx, method, url, body)
	if err != nil && errors.Is(err, ErrNetwork) && ctx.Err() == nil {
		// One retry with jitter; anything past that is the caller's problem.
		time.Sleep(200*time.Millisecond + time.Duration(rand.Intn(200))*time.Millisecond)
		status, resp, err = c.attempt(ctx, method, url, body)
	}
	return status, resp, err
}

func (c *client) attempt(ctx context.Context, method, url string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	return resp.StatusCode, respBody, nil
}
