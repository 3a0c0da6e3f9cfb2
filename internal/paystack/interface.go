package paystack

import "context"

// Gateway defines the payment gateway operations the service relies on.
// This allows for mock implementations to be used in tests.
type Gateway interface {
	VerifyTransaction(ctx context.Context, reference string) (*Verification, error)
	CreateTransferRecipient(ctx context.Context, req RecipientRequest) (*Recipient, error)
	InitiateTransfer(ctx context.Context, req TransferRequest) (*Transfer, error)
	ListBanks(ctx context.Context) ([]Bank, error)
	ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*Account, error)
}
