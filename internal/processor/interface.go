package processor

import (
	"context"

	"github.com/mauv0809/kingside/internal/compensation"
	"github.com/mauv0809/kingside/internal/notifier"
)

// Applier runs a single compensation.
type Applier interface {
	Apply(ctx context.Context, id string) (*compensation.Compensation, error)
}

// Notifier defines the notification operations required by the processor.
type Notifier interface {
	notifier.Notifier
}
