package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/bahatiirene/xrpl-lottery-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when a requested document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a conditional update lost the race, i.e.
	// the guarded status had already moved on.
	ErrConflict = errors.New("conflicting update")
)

// CategoryRepository defines the interface for lottery category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *models.LotteryCategory) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.LotteryCategory, error)
	FindAll(ctx context.Context) ([]*models.LotteryCategory, error)
	FindActive(ctx context.Context) ([]*models.LotteryCategory, error)
	Update(ctx context.Context, category *models.LotteryCategory) error
	// UpdateRolloverAmount writes only the rollover accumulator; it is the
	// single mutation the draw engine performs on a category.
	UpdateRolloverAmount(ctx context.Context, id primitive.ObjectID, amount float64) error
}

// DrawRepository defines the interface for draw data operations
type DrawRepository interface {
	Create(ctx context.Context, draw *models.Draw) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Draw, error)
	// FindByCategory returns the category's draws ordered by scheduled close
	// time descending (most recent first).
	FindByCategory(ctx context.Context, categoryID primitive.ObjectID, limit int) ([]*models.Draw, error)
	// FindOpenByCategory returns open draws ordered by imminent close.
	FindOpenByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]*models.Draw, error)
	FindDueToOpen(ctx context.Context, now time.Time) ([]*models.Draw, error)
	FindDueToClose(ctx context.Context, now time.Time) ([]*models.Draw, error)
	FindCompleted(ctx context.Context, limit int) ([]*models.Draw, error)
	// MarkOpen transitions pending_open -> open, guarded on the prior
	// status. ErrConflict when the draw was not pending_open anymore.
	MarkOpen(ctx context.Context, id primitive.ObjectID, openedAt time.Time) error
	// PersistResolution commits the final resolved state of a draw with
	// compare-and-set semantics: the write succeeds only while the stored
	// status is still pre-completion. ErrConflict means someone else
	// resolved the draw first.
	PersistResolution(ctx context.Context, draw *models.Draw) error
	Cancel(ctx context.Context, id primitive.ObjectID) error
}

// TicketRepository defines the interface for ticket data operations
type TicketRepository interface {
	CreateMany(ctx context.Context, tickets []*models.Ticket) error
	FindByDraw(ctx context.Context, drawID primitive.ObjectID) ([]*models.Ticket, error)
	DistinctEntrants(ctx context.Context, drawID primitive.ObjectID) ([]string, error)
}

// RolloverEventRepository defines the interface for rollover audit records
type RolloverEventRepository interface {
	Create(ctx context.Context, event *models.RolloverEvent) error
	FindByCategory(ctx context.Context, categoryID primitive.ObjectID, limit int) ([]*models.RolloverEvent, error)
}
