package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates all domain event types.
type EventType string

const (
	EventGameCreated   EventType = "game.created"
	EventPlayerJoined  EventType = "game.player.joined"
	EventBetPlaced     EventType = "game.bet.placed"
	EventMatchUpdated  EventType = "game.match.updated"
	EventMatchScored   EventType = "game.match.scored"
	EventGameFinished  EventType = "game.finished"
	EventPlayerCreated EventType = "player.created"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregateGame   AggregateType = "game"
	AggregatePlayer AggregateType = "player"
)

// OutboxDraft is the payload written to the event_outbox table.
type OutboxDraft struct {
	EventID       uuid.UUID       `json:"eventId"`
	AggregateType AggregateType   `json:"aggregateType"`
	AggregateID   string          `json:"aggregateId"`
	EventType     EventType       `json:"eventType"`
	PartitionKey  string          `json:"partitionKey"`
	Headers       json.RawMessage `json:"headers"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

// GuardResult is the verdict of a request guard.
type GuardResult struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
	Guard   string `json:"guard,omitempty"` // which guard blocked

	// RetryAfter is how long until the blocked key may try again, when known.
	RetryAfter time.Duration `json:"-"`
}
