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

// TicketRepository implements the repositories.TicketRepository interface
type TicketRepository struct {
	collection *mongo.Collection
}

// NewTicketRepository creates a new TicketRepository
func NewTicketRepository(db *mongo.Database) repositories.TicketRepository {
	return &TicketRepository{
		collection: db.Collection("tickets"),
	}
}

// CreateMany inserts a batch of tickets
func (r *TicketRepository) CreateMany(ctx context.Context, tickets []*models.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(tickets))
	now := time.Now()
	for _, t := range tickets {
		t.CreatedAt = now
		docs = append(docs, t)
	}
	res, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("failed to create tickets: %w", err)
	}
	for i, id := range res.InsertedIDs {
		tickets[i].ID = id.(primitive.ObjectID)
	}
	return nil
}

// FindByDraw finds all tickets for a draw in purchase order
func (r *TicketRepository) FindByDraw(ctx context.Context, drawID primitive.ObjectID) ([]*models.Ticket, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"drawId": drawID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tickets []*models.Ticket
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, err
	}
	if tickets == nil {
		tickets = []*models.Ticket{}
	}
	return tickets, nil
}

// DistinctEntrants returns the distinct wallet addresses holding tickets in a draw
func (r *TicketRepository) DistinctEntrants(ctx context.Context, drawID primitive.ObjectID) ([]string, error) {
	values, err := r.collection.Distinct(ctx, "walletAddress", bson.M{"drawId": drawID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch distinct entrants: %w", err)
	}
	wallets := make([]string, 0, len(values))
	for _, v := range values {
		if wallet, ok := v.(string); ok {
			wallets = append(wallets, wallet)
		}
	}
	return wallets, nil
}
