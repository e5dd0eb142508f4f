// Package audit is the read model of every ledger mutation, projected from the events topic.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Record is one projected mutation event
type Record struct {
	EventID       int64     `json:"event_id" bson:"event_id"`
	EventType     string    `json:"event_type" bson:"event_type"`
	AggregateType string    `json:"aggregate_type" bson:"aggregate_type"`
	AggregateID   uuid.UUID `json:"aggregate_id" bson:"aggregate_id"`
	OwnerID       uuid.UUID `json:"owner_id" bson:"owner_id"`
	ActorID       string    `json:"actor_id,omitempty" bson:"actor_id,omitempty"`
	CorrelationID string    `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	Payload       string    `json:"payload" bson:"payload"` // raw JSON of the event payload
	OccurredAt    time.Time `json:"occurred_at" bson:"occurred_at"`
	ProjectedAt   time.Time `json:"projected_at" bson:"projected_at"`
}

// Repository stores and queries audit records
type Repository interface {
	// Upsert is idempotent on EventID so redelivered events do not duplicate
	Upsert(ctx context.Context, record *Record) error
	ListByAggregate(ctx context.Context, ownerID, aggregateID uuid.UUID, limit, offset int) ([]*Record, error)
	CountByAggregate(ctx context.Context, ownerID, aggregateID uuid.UUID) (int64, error)
}
