package inngest

import (
	"context"
	"net/http"
)

// InngestClient runs compensations as durable Inngest functions.
type InngestClient interface {
	Serve() http.Handler
	// Dispatch requests asynchronous application of a compensation.
	Dispatch(ctx context.Context, compensationID string) error
}

// Runner applies a single compensation and reports whether it should be retried.
type Runner interface {
	ApplyCompensation(ctx context.Context, id string) error
}
