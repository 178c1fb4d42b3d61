package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bahatiirene/xrpl-lottery-backend/internal/models"
	"github.com/bahatiirene/xrpl-lottery-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// statuses a resolution write may still overwrite
var preCompletionStatuses = []models.DrawStatus{
	models.DrawStatusPendingOpen,
	models.DrawStatusOpen,
	models.DrawStatusClosed,
}

// DrawRepository implements the repositories.DrawRepository interface
type DrawRepository struct {
	collection *mongo.Collection
}

// NewDrawRepository creates a new DrawRepository
func NewDrawRepository(db *mongo.Database) repositories.DrawRepository {
	return &DrawRepository{
		collection: db.Collection("draws"),
	}
}

// Create creates a new draw
func (r *DrawRepository) Create(ctx context.Context, draw *models.Draw) error {
	draw.CreatedAt = time.Now()
	draw.UpdatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, draw)
	if err != nil {
		return err
	}
	draw.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByID finds a draw by ID
func (r *DrawRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Draw, error) {
	var draw models.Draw
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&draw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &draw, nil
}

// FindByCategory finds a category's draws, most recently closing first
func (r *DrawRepository) FindByCategory(ctx context.Context, categoryID primitive.ObjectID, limit int) ([]*models.Draw, error) {
	opts := options.Find().SetSort(bson.M{"scheduledCloseTime": -1})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, bson.M{"categoryId": categoryID}, opts)
}

// FindOpenByCategory finds open draws for a category ordered by imminent close
func (r *DrawRepository) FindOpenByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]*models.Draw, error) {
	filter := bson.M{
		"categoryId": categoryID,
		"status":     models.DrawStatusOpen,
	}
	opts := options.Find().SetSort(bson.M{"scheduledCloseTime": 1})
	return r.find(ctx, filter, opts)
}

// FindDueToOpen finds pending draws whose scheduled open time has passed
func (r *DrawRepository) FindDueToOpen(ctx context.Context, now time.Time) ([]*models.Draw, error) {
	filter := bson.M{
		"status":            models.DrawStatusPendingOpen,
		"scheduledOpenTime": bson.M{"$lte": now},
	}
	opts := options.Find().SetSort(bson.M{"scheduledOpenTime": 1})
	return r.find(ctx, filter, opts)
}

// FindDueToClose finds open draws whose scheduled close time has passed
func (r *DrawRepository) FindDueToClose(ctx context.Context, now time.Time) ([]*models.Draw, error) {
	filter := bson.M{
		"status":             models.DrawStatusOpen,
		"scheduledCloseTime": bson.M{"$lte": now},
	}
	opts := options.Find().SetSort(bson.M{"scheduledCloseTime": 1})
	return r.find(ctx, filter, opts)
}

// FindCompleted finds completed draws, most recently closed first
func (r *DrawRepository) FindCompleted(ctx context.Context, limit int) ([]*models.Draw, error) {
	opts := options.Find().SetSort(bson.M{"actualCloseTime": -1})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, bson.M{"status": models.DrawStatusCompleted}, opts)
}

// MarkOpen transitions a pending draw to open, guarded on its prior status
func (r *DrawRepository) MarkOpen(ctx context.Context, id primitive.ObjectID, openedAt time.Time) error {
	filter := bson.M{
		"_id":    id,
		"status": models.DrawStatusPendingOpen,
	}
	update := bson.M{"$set": bson.M{
		"status":         models.DrawStatusOpen,
		"actualOpenTime": openedAt,
		"updatedAt":      time.Now(),
	}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to mark draw open: %w", err)
	}
	if res.MatchedCount == 0 {
		return repositories.ErrConflict
	}
	return nil
}

// PersistResolution commits a resolved draw only while its stored status is
// still pre-completion. A matched count of zero means another resolver won.
func (r *DrawRepository) PersistResolution(ctx context.Context, draw *models.Draw) error {
	filter := bson.M{
		"_id":    draw.ID,
		"status": bson.M{"$in": preCompletionStatuses},
	}
	update := bson.M{"$set": bson.M{
		"status":           models.DrawStatusCompleted,
		"participants":     draw.Participants,
		"winnersByTier":    draw.WinnersByTier,
		"winningSelection": draw.WinningSelection,
		"randomnessSeed":   draw.RandomnessSeed,
		"actualCloseTime":  draw.ActualCloseTime,
		"updatedAt":        time.Now(),
	}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to persist resolution: %w", err)
	}
	if res.MatchedCount == 0 {
		return repositories.ErrConflict
	}
	return nil
}

// Cancel marks a draw cancelled unless it already completed
func (r *DrawRepository) Cancel(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$in": []models.DrawStatus{models.DrawStatusPendingOpen, models.DrawStatusOpen}},
	}
	update := bson.M{"$set": bson.M{
		"status":    models.DrawStatusCancelled,
		"updatedAt": time.Now(),
	}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repositories.ErrConflict
	}
	return nil
}

func (r *DrawRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Draw, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var draws []*models.Draw
	if err := cursor.All(ctx, &draws); err != nil {
		return nil, err
	}
	if draws == nil {
		draws = []*models.Draw{}
	}
	return draws, nil
}
