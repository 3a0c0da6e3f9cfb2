package paystack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mauv0809/kingside/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*APIClient, *metrics.Mock) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	m := metrics.NewMock()
	c := NewClient("sk_test", server.URL, m)
	c.httpClient = server.Client()
	return c, m
}

func TestVerifyTransaction(t *testing.T) {
	c, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/transaction/verify/ref-123", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"status":true,"message":"Verification successful","data":{"reference":"ref-123","status":"success","amount":500000,"currency":"NGN"}}`)
	})

	v, err := c.VerifyTransaction(context.Background(), "ref-123")
	require.NoError(t, err)
	assert.True(t, v.Succeeded())
	assert.Equal(t, int64(500000), v.Amount)
	assert.Equal(t, 1, m.GatewayCalls("verify"))
}

func TestVerifyTransaction_Errors(t *testing.T) {
	t.Run("status false", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"status":false,"message":"Transaction reference not found"}`)
		})
		_, err := c.VerifyTransaction(context.Background(), "nope")
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "Transaction reference not found", apiErr.Message)
	})

	t.Run("http error without body", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		_, err := c.VerifyTransaction(context.Background(), "ref")
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	})
}

func TestCreateRecipientAndTransfer(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		switch r.URL.Path {
		case "/transferrecipient":
			var req RecipientRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "nuban", req.Type)
			assert.Equal(t, "NGN", req.Currency)
			fmt.Fprint(w, `{"status":true,"message":"ok","data":{"recipient_code":"RCP_1"}}`)
		case "/transfer":
			var req TransferRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "balance", req.Source)
			assert.Equal(t, "RCP_1", req.Recipient)
			assert.Equal(t, int64(20000), req.Amount)
			fmt.Fprintf(w, `{"status":true,"message":"ok","data":{"transfer_code":"TRF_1","reference":%q,"status":"pending"}}`, req.Reference)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	ctx := context.Background()

	rcp, err := c.CreateTransferRecipient(ctx, RecipientRequest{Type: "nuban", Name: "Ada", AccountNumber: "0123456789", BankCode: "058", Currency: "NGN"})
	require.NoError(t, err)
	assert.Equal(t, "RCP_1", rcp.RecipientCode)

	tr, err := c.InitiateTransfer(ctx, TransferRequest{Source: "balance", Amount: 20000, Recipient: rcp.RecipientCode, Reason: "Wallet withdrawal", Reference: "wd-1"})
	require.NoError(t, err)
	assert.Equal(t, "TRF_1", tr.TransferCode)
	assert.Equal(t, "wd-1", tr.Reference)
}

func TestListBanksAndResolve(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/bank":
			fmt.Fprint(w, `{"status":true,"message":"ok","data":[{"name":"Access Bank","code":"044","country":"Nigeria"},{"name":"Absa","code":"ABSA","country":"Ghana"}]}`)
		case "/bank/resolve":
			assert.Equal(t, "0123456789", r.URL.Query().Get("account_number"))
			assert.Equal(t, "044", r.URL.Query().Get("bank_code"))
			fmt.Fprint(w, `{"status":true,"message":"ok","data":{"account_name":"ADA LOVELACE","account_number":"0123456789"}}`)
		}
	})
	ctx := context.Background()

	banks, err := c.ListBanks(ctx)
	require.NoError(t, err)
	require.Len(t, banks, 2)
	assert.Equal(t, "Nigeria", banks[0].Country)

	acct, err := c.ResolveAccount(ctx, "0123456789", "044")
	require.NoError(t, err)
	assert.Equal(t, "ADA LOVELACE", acct.AccountName)
}

func TestParseWebhook(t *testing.T) {
	body := []byte(`{"event":"transfer.success","data":{"transfer_code":"TRF_1","reference":"wd-1","status":"success","amount":20000}}`)

	event, err := ParseWebhook("sk_test", body, Sign("sk_test", body))
	require.NoError(t, err)
	assert.Equal(t, EventTransferSuccess, event.Event)

	tr, err := event.TransferData()
	require.NoError(t, err)
	assert.Equal(t, "TRF_1", tr.TransferCode)

	_, err = ParseWebhook("sk_test", body, Sign("other", body))
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = ParseWebhook("sk_test", body, "not-hex")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}
