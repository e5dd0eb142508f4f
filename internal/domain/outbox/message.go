// Package outbox stores ledger mutation events inside the same database
// transaction as the mutation, for later publishing.
package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/smb-finance-ledger/internal/domain/shared"
)

// Message is one pending domain event in the transactional outbox
type Message struct {
	ID            int64               `json:"id"`
	EventType     shared.EventType    `json:"event_type"`
	AggregateType string              `json:"aggregate_type"`
	AggregateID   uuid.UUID           `json:"aggregate_id"`
	OwnerID       uuid.UUID           `json:"owner_id"`
	ActorID       string              `json:"actor_id,omitempty"`
	CorrelationID string              `json:"correlation_id,omitempty"`
	Payload       json.RawMessage     `json:"payload"`
	Status        shared.OutboxStatus `json:"status"`
	Attempts      int                 `json:"attempts"`
	CreatedAt     time.Time           `json:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
}

// Event is the wire form published to the events topic
type Event struct {
	EventID       int64            `json:"event_id"`
	Type          shared.EventType `json:"type"`
	AggregateType string           `json:"aggregate_type"`
	AggregateID   uuid.UUID        `json:"aggregate_id"`
	OwnerID       uuid.UUID        `json:"owner_id"`
	ActorID       string           `json:"actor_id,omitempty"`
	CorrelationID string           `json:"correlation_id,omitempty"`
	OccurredAt    time.Time        `json:"occurred_at"`
	Payload       json.RawMessage  `json:"payload"`
}

// NewMessage marshals payload into a pending outbox message
func NewMessage(eventType shared.EventType, aggregateType string, aggregateID uuid.UUID, caller shared.Caller, payload any) (*Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Message{
		EventType:     eventType,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		OwnerID:       caller.TenantID,
		ActorID:       caller.UserID,
		Payload:       raw,
		Status:        shared.OutboxStatusPending,
		Attempts:      0,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsProcessed() {
	m.Status = shared.OutboxStatusProcessed
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsFailed() {
	m.Status = shared.OutboxStatusFailedToPublish
	now := time.Now()
	m.LastAttemptAt = &now
}

// Event converts the stored message into its published form
func (m *Message) Event() Event {
	return Event{
		EventID:       m.ID,
		Type:          m.EventType,
		AggregateType: m.AggregateType,
		AggregateID:   m.AggregateID,
		OwnerID:       m.OwnerID,
		ActorID:       m.ActorID,
		CorrelationID: m.CorrelationID,
		OccurredAt:    m.CreatedAt,
		Payload:       m.Payload,
	}
}
