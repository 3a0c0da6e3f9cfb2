package paystack

import (
	"context"
	"sync"
)

// MockClient is a mock implementation of the Gateway interface for testing.
// It is safe for concurrent use.
type MockClient struct {
	mu sync.Mutex

	// Spies for method calls
	VerifyTransactionFunc       func(ctx context.Context, reference string) (*Verification, error)
	CreateTransferRecipientFunc func(ctx context.Context, req RecipientRequest) (*Recipient, error)
	InitiateTransferFunc        func(ctx context.Context, req TransferRequest) (*Transfer, error)
	ListBanksFunc               func(ctx context.Context) ([]Bank, error)
	ResolveAccountFunc          func(ctx context.Context, accountNumber, bankCode string) (*Account, error)

	// Call records
	VerifyTransactionCalls       []string
	CreateTransferRecipientCalls []RecipientRequest
	InitiateTransferCalls        []TransferRequest
	ListBanksCalls               int
	ResolveAccountCalls          []string
}

var _ Gateway = (*MockClient)(nil)

// NewMockClient creates a new mock instance.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Reset clears all call records.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.VerifyTransactionCalls = nil
	m.CreateTransferRecipientCalls = nil
	m.InitiateTransferCalls = nil
	m.ListBanksCalls = 0
	m.ResolveAccountCalls = nil
}

// TotalCalls returns the number of gateway calls of any kind.
func (m *MockClient) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.VerifyTransactionCalls) + len(m.CreateTransferRecipientCalls) +
		len(m.InitiateTransferCalls) + m.ListBanksCalls + len(m.ResolveAccountCalls)
}

func (m *MockClient) VerifyTransaction(ctx context.Context, reference string) (*Verification, error) {
	m.mu.Lock()
	m.VerifyTransactionCalls = append(m.VerifyTransactionCalls, reference)
	fn := m.VerifyTransactionFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, reference)
	}
	return &Verification{Reference: reference, Status: TransactionSuccess}, nil
}

func (m *MockClient) CreateTransferRecipient(ctx context.Context, req RecipientRequest) (*Recipient, error) {
	m.mu.Lock()
	m.CreateTransferRecipientCalls = append(m.CreateTransferRecipientCalls, req)
	fn := m.CreateTransferRecipientFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, req)
	}
	return &Recipient{RecipientCode: "RCP_mock"}, nil
}

func (m *MockClient) InitiateTransfer(ctx context.Context, req TransferRequest) (*Transfer, error) {
	m.mu.Lock()
	m.InitiateTransferCalls = append(m.InitiateTransferCalls, req)
	fn := m.InitiateTransferFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, req)
	}
	return &Transfer{TransferCode: "TRF_" + req.Reference, Reference: req.Reference, Status: "pending", Amount: req.Amount}, nil
}

func (m *MockClient) ListBanks(ctx context.Context) ([]Bank, error) {
	m.mu.Lock()
	m.ListBanksCalls++
	fn := m.ListBanksFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return []Bank{}, nil
}

func (m *MockClient) ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*Account, error) {
	m.mu.Lock()
	m.ResolveAccountCalls = append(m.ResolveAccountCalls, accountNumber+"/"+bankCode)
	fn := m.ResolveAccountFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, accountNumber, bankCode)
	}
	return &Account{AccountNumber: accountNumber}, nil
}
