package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
// Each event type is published to the topic of the same name.
type EventType string

const (
	EventParticipantJoined       EventType = "participant-joined"
	EventParticipantLeft         EventType = "participant-left"
	EventWithdrawalInitiated     EventType = "withdrawal-initiated"
	EventWithdrawalSettled       EventType = "withdrawal-settled"
	EventCompensationRequested   EventType = "compensation-requested"
	EventTournamentStatusChanged EventType = "tournament-status-changed"
)

type ParticipantJoined struct {
	TournamentID  string `msgpack:"tournament_id"`
	ProfileID     string `msgpack:"profile_id"`
	PaymentMethod string `msgpack:"payment_method"`
	Amount        int64  `msgpack:"amount"`
	JoinedAt      int64  `msgpack:"joined_at"`
}

type ParticipantLeft struct {
	TournamentID  string `msgpack:"tournament_id"`
	ProfileID     string `msgpack:"profile_id"`
	Refunded      int64  `msgpack:"refunded"`
	RefundPending bool   `msgpack:"refund_pending"`
}

type WithdrawalInitiated struct {
	WithdrawalID string `msgpack:"withdrawal_id"`
	ProfileID    string `msgpack:"profile_id"`
	Amount       int64  `msgpack:"amount"`
	TransferCode string `msgpack:"transfer_code"`
}

type WithdrawalSettled struct {
	WithdrawalID string `msgpack:"withdrawal_id"`
	TransferCode string `msgpack:"transfer_code"`
	Status       string `msgpack:"status"`
}

// CompensationRequested asks a worker to apply a pending compensation.
type CompensationRequested struct {
	CompensationID string `msgpack:"compensation_id"`
}

type TournamentStatusChanged struct {
	TournamentID string `msgpack:"tournament_id"`
	From         string `msgpack:"from"`
	To           string `msgpack:"to"`
}

// PushMessage is the JSON envelope Pub/Sub push subscriptions deliver.
type PushMessage struct {
	Subscription string `json:"subscription"`
	Message      struct {
		ID   string `json:"messageId"`
		Data string `json:"data"` // base64-encoded MessagePack payload
	} `json:"message"`
}
