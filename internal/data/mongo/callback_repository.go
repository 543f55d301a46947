// Package mongo provides the MongoDB-backed callback audit log.
package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lms-payment-gateway/internal/domain/callback"
)

const (
	// CallbackCollectionName is the name of the callback audit collection in MongoDB
	CallbackCollectionName = "payment_callbacks"
)

// CallbackRepository implements the callback.Repository interface for MongoDB
type CallbackRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewCallbackRepository creates a new MongoDB callback repository
func NewCallbackRepository(logger *slog.Logger, db *mongo.Database) *CallbackRepository {
	return &CallbackRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureIndexes creates the reference/received_at index used by the history listing.
func (r *CallbackRepository) EnsureIndexes(ctx context.Context) error {
	model := mongo.IndexModel{
		Keys:    bson.D{{Key: "reference", Value: 1}, {Key: "received_at", Value: -1}},
		Options: options.Index().SetName("reference_received_at"),
	}
	if _, err := r.db.Collection(CallbackCollectionName).Indexes().CreateOne(ctx, model); err != nil {
		return fmt.Errorf("failed to create callback indexes: %w", err)
	}
	return nil
}

// Create appends a callback record. Records are never updated.
func (r *CallbackRepository) Create(ctx context.Context, record *callback.Record) error {
	if _, err := r.db.Collection(CallbackCollectionName).InsertOne(ctx, record); err != nil {
		r.logger.Error("Failed to store callback record",
			"reference", record.Reference,
			"channel", string(record.Channel),
			"error", err)
		return fmt.Errorf("failed to store callback record: %w", err)
	}
	return nil
}

// GetByReference retrieves paginated callback records for a payment, newest first.
func (r *CallbackRepository) GetByReference(ctx context.Context, reference string, limit, offset int) ([]*callback.Record, error) {
	collection := r.db.Collection(CallbackCollectionName)

	filter := bson.M{"reference": reference}
	opts := options.Find().
		SetSort(bson.D{{Key: "received_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get callback records", "reference", reference, "error", err)
		return nil, fmt.Errorf("failed to get callback records: %w", err)
	}
	defer cursor.Close(ctx)

	records := []*callback.Record{}
	if err := cursor.All(ctx, &records); err != nil {
		r.logger.Error("Failed to decode callback records", "reference", reference, "error", err)
		return nil, fmt.Errorf("failed to decode callback records: %w", err)
	}

	return records, nil
}

// CountByReference counts the callbacks received for a payment
func (r *CallbackRepository) CountByReference(ctx context.Context, reference string) (int64, error) {
	count, err := r.db.Collection(CallbackCollectionName).CountDocuments(ctx, bson.M{"reference": reference})
	if err != nil {
		r.logger.Error("Failed to count callback records", "reference", reference, "error", err)
		return 0, fmt.Errorf("failed to count callback records: %w", err)
	}
	return count, nil
}
