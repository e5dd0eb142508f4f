package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/smb-finance-ledger/internal/domain/audit"
)

const (
	// AuditCollectionName is the name of the audit collection in MongoDB
	AuditCollectionName = "audit_logs"
)

// AuditRepository implements the audit.Repository interface for MongoDB
type AuditRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewAuditRepository creates a new MongoDB audit repository
func NewAuditRepository(logger *slog.Logger, db *mongo.Database) audit.Repository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureIndexes creates the unique event index and the history lookup index
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(AuditCollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "aggregate_id", Value: 1}, {Key: "occurred_at", Value: -1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create audit indexes: %w", err)
	}
	return nil
}

// Upsert inserts the record unless one with the same event ID exists.
// A redelivered event leaves the stored record untouched.
func (r *AuditRepository) Upsert(ctx context.Context, record *audit.Record) error {
	collection := r.db.Collection(AuditCollectionName)

	filter := bson.M{"event_id": record.EventID}
	update := bson.M{"$setOnInsert": record}
	opts := options.Update().SetUpsert(true)

	result, err := collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		// two consumers raced on the same event; the other one inserted it
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		r.logger.Error("Failed to upsert audit record",
			"event_id", record.EventID,
			"error", err)
		return fmt.Errorf("failed to upsert audit record: %w", err)
	}

	if result.MatchedCount > 0 {
		r.logger.Debug("Audit record already projected", "event_id", record.EventID)
	}
	return nil
}

// ListByAggregate returns the history of one aggregate, newest first
func (r *AuditRepository) ListByAggregate(ctx context.Context, ownerID, aggregateID uuid.UUID, limit, offset int) ([]*audit.Record, error) {
	collection := r.db.Collection(AuditCollectionName)

	filter := bson.M{"owner_id": ownerID, "aggregate_id": aggregateID}
	opts := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: -1}, {Key: "event_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get audit records",
			"aggregate_id", aggregateID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get audit records: %w", err)
	}
	defer cursor.Close(ctx)

	records := make([]*audit.Record, 0)
	if err := cursor.All(ctx, &records); err != nil {
		r.logger.Error("Failed to decode audit records",
			"aggregate_id", aggregateID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode audit records: %w", err)
	}

	return records, nil
}

// CountByAggregate counts the audit records of one aggregate
func (r *AuditRepository) CountByAggregate(ctx context.Context, ownerID, aggregateID uuid.UUID) (int64, error) {
	collection := r.db.Collection(AuditCollectionName)

	filter := bson.M{"owner_id": ownerID, "aggregate_id": aggregateID}
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count audit records",
			"aggregate_id", aggregateID.String(),
			"error", err)
		return 0, fmt.Errorf("failed to count audit records: %w", err)
	}

	return count, nil
}
