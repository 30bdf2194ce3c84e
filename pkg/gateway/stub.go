package gateway

import "context"

// StubProvider is a configurable in-memory provider for tests and local
// development without gateway credentials.
type StubProvider struct {
	ProviderName    string
	VerifyStatus    Status
	TransferStatus  Status
	InitializeErr   error
	VerifyErr       error
	TransferErr     error
	InitializeCalls []InitializeRequest
	VerifyCalls     []string
	TransferCalls   []TransferRequest
}

func NewStubProvider(name string) *StubProvider {
	return &StubProvider{
		ProviderName:   name,
		VerifyStatus:   StatusSuccess,
		TransferStatus: StatusSuccess,
	}
}

func (s *StubProvider) Name() string {
	if s.ProviderName == "" {
		return "stub"
	}
	return s.ProviderName
}

func (s *StubProvider) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResponse, error) {
	s.InitializeCalls = append(s.InitializeCalls, req)
	if s.InitializeErr != nil {
		return nil, s.InitializeErr
	}
	return &InitializeResponse{
		AuthorizationURL: "https://checkout.example.com/" + req.Reference,
		SessionID:        "sess_" + req.Reference,
	}, nil
}

func (s *StubProvider) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	s.VerifyCalls = append(s.VerifyCalls, reference)
	if s.VerifyErr != nil {
		return nil, s.VerifyErr
	}
	return &VerifyResult{Status: s.VerifyStatus, ProviderTxnID: "txn_" + reference}, nil
}

func (s *StubProvider) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	s.TransferCalls = append(s.TransferCalls, req)
	if s.TransferErr != nil {
		return nil, s.TransferErr
	}
	return &TransferResult{Status: s.TransferStatus, TransferID: "trf_" + req.OrderID}, nil
}
