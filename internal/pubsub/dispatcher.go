package pubsub

import (
	"context"

	"github.com/charmbracelet/log"
)

// Dispatcher hands pending compensations to the push subscriber of the
// compensation-requested topic.
type Dispatcher struct {
	client PubSubClient
}

func NewDispatcher(client PubSubClient) *Dispatcher {
	return &Dispatcher{client: client}
}

func (d *Dispatcher) Dispatch(ctx context.Context, compensationID string) error {
	log.Debug("Dispatching compensation", "compensationID", compensationID)
	return d.client.SendMessage(EventCompensationRequested, CompensationRequested{CompensationID: compensationID})
}
