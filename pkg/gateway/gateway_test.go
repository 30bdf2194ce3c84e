package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStatus(t *testing.T) {
	cases := []struct {
		in   string
		want Status
	}{
		{"success", StatusSuccess},
		{"successful", StatusSuccess},
		{"failed", StatusFailed},
		{"abandoned", StatusFailed},
		{"reversed", StatusFailed},
		{"pending", StatusPending},
		{"ongoing", StatusPending},
		{"", StatusUnknown},
		{"SUCCESS", StatusUnknown}, // provider vocabulary is lowercase
		{"queued", StatusUnknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeStatus(tc.in), "input %q", tc.in)
	}
}

func TestSubunits(t *testing.T) {
	assert.Equal(t, "11500", subunits(decimal.NewFromInt(115)))
	assert.Equal(t, "1150050", subunits(decimal.RequireFromString("11500.50")))
	assert.Equal(t, "0", subunits(decimal.Zero))
}

func TestPaystackInitialize(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transaction/initialize", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":true,"data":{"authorization_url":"https://pay.example/x","access_code":"AC_1","reference":"DARRA_abcd1234"}}`))
	}))
	defer srv.Close()

	p := NewPaystackProvider(srv.URL, "sk_test_x", 5*time.Second)
	resp, err := p.Initialize(context.Background(), InitializeRequest{
		Reference: "DARRA_abcd1234",
		Email:     "buyer@example.com",
		Amount:    decimal.RequireFromString("115.00"),
		Currency:  "NGN",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/x", resp.AuthorizationURL)
	assert.Equal(t, "AC_1", resp.SessionID)
	assert.Equal(t, "Bearer sk_test_x", gotAuth)
}

func TestPaystackInitializeNoKey(t *testing.T) {
	p := NewPaystackProvider("http://localhost:0", "", time.Second)
	_, err := p.Initialize(context.Background(), InitializeRequest{Reference: "r"})
	assert.ErrorIs(t, err, ErrConfig)
}

func TestPaystackVerifyNormalizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transaction/verify/DARRA_abcd1234", r.URL.Path)
		w.Write([]byte(`{"status":true,"data":{"id":12345,"status":"success"}}`))
	}))
	defer srv.Close()

	p := NewPaystackProvider(srv.URL, "sk_test_x", 5*time.Second)
	res, err := p.Verify(context.Background(), "DARRA_abcd1234")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, "12345", res.ProviderTxnID)
	assert.NotEmpty(t, res.Raw)
}

func TestPaystackVerifyProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":false,"message":"Invalid key"}`))
	}))
	defer srv.Close()

	p := NewPaystackProvider(srv.URL, "sk_bad", 5*time.Second)
	_, err := p.Verify(context.Background(), "DARRA_abcd1234")
	assert.ErrorIs(t, err, ErrProvider)
}

func TestFlutterwaveVerifyByReference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v3/transactions/verify_by_reference", r.URL.Path)
		require.Equal(t, "DARRA_ffff0001", r.URL.Query().Get("tx_ref"))
		w.Write([]byte(`{"status":"success","data":{"id":777,"status":"successful"}}`))
	}))
	defer srv.Close()

	p := NewFlutterwaveProvider(srv.URL, "flw_test", 5*time.Second)
	res, err := p.Verify(context.Background(), "DARRA_ffff0001")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, "777", res.ProviderTxnID)
}

func TestNetworkErrorRetriesOnce(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			// Kill the connection so the client sees a transport error.
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			conn.Close()
			return
		}
		w.Write([]byte(`{"status":true,"data":{"id":1,"status":"success"}}`))
	}))
	defer srv.Close()

	p := NewPaystackProvider(srv.URL, "sk_test_x", 5*time.Second)
	res, err := p.Verify(context.Background(), "ref")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, 2, calls)
}

func TestStubProviderRecordsCalls(t *testing.T) {
	s := NewStubProvider("paystack")
	_, err := s.Initialize(context.Background(), InitializeRequest{Reference: "r1"})
	require.NoError(t, err)
	_, err = s.Verify(context.Background(), "r1")
	require.NoError(t, err)
	assert.Len(t, s.InitializeCalls, 1)
	assert.Equal(t, []string{"r1"}, s.VerifyCalls)
}
