package paystack

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidSignature is returned when a webhook body does not match its signature.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Sign returns the hex HMAC-SHA512 of body keyed with the secret key.
func Sign(secretKey string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secretKey))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// ParseWebhook checks the signature of a raw webhook body and decodes it.
func ParseWebhook(secretKey string, body []byte, signature string) (*WebhookEvent, error) {
	expected, err := hex.DecodeString(Sign(secretKey, body))
	if err != nil {
		return nil, err
	}
	given, err := hex.DecodeString(signature)
	if err != nil || !hmac.Equal(expected, given) {
		return nil, ErrInvalidSignature
	}
	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("decode webhook: %w", err)
	}
	return &event, nil
}
