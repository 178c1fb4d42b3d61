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

// CategoryRepository implements the repositories.CategoryRepository interface
type CategoryRepository struct {
	collection *mongo.Collection
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(db *mongo.Database) repositories.CategoryRepository {
	return &CategoryRepository{
		collection: db.Collection("lottery_categories"),
	}
}

// Create creates a new lottery category
func (r *CategoryRepository) Create(ctx context.Context, category *models.LotteryCategory) error {
	category.CreatedAt = time.Now()
	category.UpdatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, category)
	if err != nil {
		return err
	}
	category.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByID finds a category by ID
func (r *CategoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.LotteryCategory, error) {
	var category models.LotteryCategory
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&category)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

// FindAll finds all categories
func (r *CategoryRepository) FindAll(ctx context.Context) ([]*models.LotteryCategory, error) {
	return r.find(ctx, bson.M{})
}

// FindActive finds categories that may receive new draws
func (r *CategoryRepository) FindActive(ctx context.Context) ([]*models.LotteryCategory, error) {
	return r.find(ctx, bson.M{"isActive": true})
}

// Update replaces a category document
func (r *CategoryRepository) Update(ctx context.Context, category *models.LotteryCategory) error {
	category.UpdatedAt = time.Now()
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": category.ID}, category)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// UpdateRolloverAmount writes the rollover accumulator only
func (r *CategoryRepository) UpdateRolloverAmount(ctx context.Context, id primitive.ObjectID, amount float64) error {
	update := bson.M{"$set": bson.M{
		"currentRolloverAmount": amount,
		"updatedAt":             time.Now(),
	}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update rollover amount: %w", err)
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *CategoryRepository) find(ctx context.Context, filter bson.M) ([]*models.LotteryCategory, error) {
	opts := options.Find().SetSort(bson.M{"name": 1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var categories []*models.LotteryCategory
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []*models.LotteryCategory{}
	}
	return categories, nil
}
