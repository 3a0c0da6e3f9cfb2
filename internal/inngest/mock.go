package inngest

import (
	"context"
	"net/http"
	"sync"
)

var _ InngestClient = (*Mock)(nil)

// Mock is a mock implementation of InngestClient for testing.
type Mock struct {
	mu sync.Mutex

	DispatchFunc  func(ctx context.Context, compensationID string) error
	DispatchCalls []string
}

func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Serve() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func (m *Mock) Dispatch(ctx context.Context, compensationID string) error {
	m.mu.Lock()
	m.DispatchCalls = append(m.DispatchCalls, compensationID)
	fn := m.DispatchFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, compensationID)
	}
	return nil
}
