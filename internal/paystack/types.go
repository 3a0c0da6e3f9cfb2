package paystack

import (
	"encoding/json"
	"fmt"
)

const (
	// DefaultBaseURL is the production Paystack API.
	DefaultBaseURL = "https://api.paystack.co"
	// SignatureHeader carries the HMAC-SHA512 of a webhook body.
	SignatureHeader = "x-paystack-signature"

	TransactionSuccess = "success"

	EventChargeSuccess    = "charge.success"
	EventTransferSuccess  = "transfer.success"
	EventTransferFailed   = "transfer.failed"
	EventTransferReversed = "transfer.reversed"
)

// APIError is returned when the gateway answers with a non-2xx status or
// status=false. Message is the upstream message and safe to show to users.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("paystack: %s (status %d)", e.Message, e.StatusCode)
}

// envelope is the common response wrapper of every Paystack endpoint.
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Verification is the result of verifying a card transaction by reference.
type Verification struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
}

// Succeeded reports whether the gateway settled the charge.
func (v *Verification) Succeeded() bool {
	return v != nil && v.Status == TransactionSuccess
}

type RecipientRequest struct {
	Type          string `json:"type"`
	Name          string `json:"name"`
	AccountNumber string `json:"account_number"`
	BankCode      string `json:"bank_code"`
	Currency      string `json:"currency"`
}

type Recipient struct {
	RecipientCode string `json:"recipient_code"`
}

type TransferRequest struct {
	Source    string `json:"source"`
	Amount    int64  `json:"amount"`
	Recipient string `json:"recipient"`
	Reason    string `json:"reason"`
	Reference string `json:"reference,omitempty"`
}

type Transfer struct {
	TransferCode string `json:"transfer_code"`
	Reference    string `json:"reference"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
}

type Bank struct {
	Name    string `json:"name"`
	Code    string `json:"code"`
	Country string `json:"country"`
}

type Account struct {
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
}

// WebhookEvent is the payload Paystack posts to the webhook endpoint.
type WebhookEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// TransferData decodes the data of a transfer.* webhook event.
func (e WebhookEvent) TransferData() (*Transfer, error) {
	var t Transfer
	if err := json.Unmarshal(e.Data, &t); err != nil {
		return nil, fmt.Errorf("decode transfer event: %w", err)
	}
	return &t, nil
}
