package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/kingside/internal/metrics"
)

// APIClient talks to the Paystack REST API and implements Gateway.
type APIClient struct {
	httpClient *http.Client
	secretKey  string
	metrics    metrics.Metrics
	BaseURL    string
}

// NewClient creates a Paystack client. An empty baseURL selects DefaultBaseURL.
func NewClient(secretKey, baseURL string, metrics metrics.Metrics) *APIClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &APIClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		secretKey:  secretKey,
		metrics:    metrics,
		BaseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Ensure APIClient implements the Gateway interface.
var _ Gateway = (*APIClient)(nil)

// VerifyTransaction looks up a card transaction by its reference.
func (c *APIClient) VerifyTransaction(ctx context.Context, reference string) (*Verification, error) {
	var v Verification
	path := "/transaction/verify/" + url.PathEscape(reference)
	if err := c.do(ctx, "verify", http.MethodGet, path, nil, &v); err != nil {
		return nil, err
	}
	log.Debug("Verified gateway transaction", "reference", reference, "status", v.Status, "amount", v.Amount)
	return &v, nil
}

// CreateTransferRecipient registers a bank account as a transfer recipient.
func (c *APIClient) CreateTransferRecipient(ctx context.Context, req RecipientRequest) (*Recipient, error) {
	var r Recipient
	if err := c.do(ctx, "transfer_recipient", http.MethodPost, "/transferrecipient", req, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// InitiateTransfer moves money from the platform balance to a recipient.
func (c *APIClient) InitiateTransfer(ctx context.Context, req TransferRequest) (*Transfer, error) {
	var t Transfer
	if err := c.do(ctx, "transfer", http.MethodPost, "/transfer", req, &t); err != nil {
		return nil, err
	}
	log.Info("Gateway transfer initiated", "transferCode", t.TransferCode, "reference", req.Reference, "amount", req.Amount)
	return &t, nil
}

// ListBanks returns every bank the gateway knows about.
func (c *APIClient) ListBanks(ctx context.Context) ([]Bank, error) {
	var banks []Bank
	if err := c.do(ctx, "list_banks", http.MethodGet, "/bank", nil, &banks); err != nil {
		return nil, err
	}
	return banks, nil
}

// ResolveAccount returns the registered name of a bank account.
func (c *APIClient) ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*Account, error) {
	q := url.Values{}
	q.Set("account_number", accountNumber)
	q.Set("bank_code", bankCode)
	var a Account
	if err := c.do(ctx, "resolve_account", http.MethodGet, "/bank/resolve?"+q.Encode(), nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *APIClient) do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	log.Debug("Calling payment gateway", "operation", op, "method", method, "path", path)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ObserveGatewayDuration(op, time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest || !env.Status {
		msg := env.Message
		if msg == "" {
			msg = "request failed"
		}
		log.Warn("Payment gateway rejected request", "operation", op, "status", resp.StatusCode, "message", msg)
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}
