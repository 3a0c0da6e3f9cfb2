package inngest

import (
	"github.com/inngest/inngestgo"
)

// EventCompensationRequested triggers the apply-compensation function.
const EventCompensationRequested = "kingside/compensation.requested"

type client struct {
	inngestClient inngestgo.Client
	runner        Runner
}

// CompensationData is the payload of EventCompensationRequested.
type CompensationData struct {
	CompensationID string `json:"compensationId"`
}
