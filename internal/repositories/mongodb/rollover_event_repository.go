package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/bahatiirene/xrpl-lottery-backend/internal/models"
	"github.com/bahatiirene/xrpl-lottery-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RolloverEventRepository implements the repositories.RolloverEventRepository interface
type RolloverEventRepository struct {
	collection *mongo.Collection
}

// NewRolloverEventRepository creates a new RolloverEventRepository
func NewRolloverEventRepository(db *mongo.Database) repositories.RolloverEventRepository {
	return &RolloverEventRepository{
		collection: db.Collection("rollover_events"),
	}
}

// Create records one application of the rollover ledger
func (r *RolloverEventRepository) Create(ctx context.Context, event *models.RolloverEvent) error {
	event.CreatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, event)
	if err != nil {
		return fmt.Errorf("failed to create rollover event: %w", err)
	}
	event.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByCategory finds a category's rollover history, newest first
func (r *RolloverEventRepository) FindByCategory(ctx context.Context, categoryID primitive.ObjectID, limit int) ([]*models.RolloverEvent, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := r.collection.Find(ctx, bson.M{"categoryId": categoryID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []*models.RolloverEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	if events == nil {
		events = []*models.RolloverEvent{}
	}
	return events, nil
}
