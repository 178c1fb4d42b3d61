package services

import (
	"context"
	"errors"
	"time"

	"github.com/bahatiirene/xrpl-lottery-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound indicates the referenced draw or category does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable indicates a retryable infrastructure failure (randomness
	// source or storage unreachable). The draw is left untouched.
	ErrUnavailable = errors.New("temporarily unavailable")
	// ErrInvalidTransition indicates the requested lifecycle transition is
	// not legal from the draw's current state.
	ErrInvalidTransition = errors.New("invalid draw state transition")
	// ErrValidation indicates a rejected category or ticket payload.
	ErrValidation = errors.New("validation failed")
)

// DrawService defines the interface for draw lifecycle operations
type DrawService interface {
	// ScheduleDraw creates a pending draw for a category, snapshotting the
	// prize pool (category base + accumulated rollover) at that instant.
	ScheduleDraw(ctx context.Context, categoryID primitive.ObjectID, openTime, closeTime time.Time) (*models.Draw, error)

	// OpenDraw transitions a pending draw to open once its scheduled open
	// time has been reached.
	OpenDraw(ctx context.Context, drawID primitive.ObjectID) (*models.Draw, error)

	// CloseDraw resolves an open draw: winners, prizes, rollover. Calling it
	// on an already completed draw returns the existing result unchanged.
	CloseDraw(ctx context.Context, drawID primitive.ObjectID) (*models.Draw, error)

	// ProcessDueDraws opens pending draws and closes open draws whose
	// scheduled times have passed. Returns (opened, closed) counts.
	ProcessDueDraws(ctx context.Context) (int, int, error)

	// GetDrawByID retrieves a draw by its ID
	GetDrawByID(ctx context.Context, drawID primitive.ObjectID) (*models.Draw, error)

	// GetDrawHistory retrieves a category's draws, most recent first
	GetDrawHistory(ctx context.Context, categoryID primitive.ObjectID, limit int) ([]*models.Draw, error)

	// ComputeWinningPicks re-derives a pick-N selection for a seed so audit
	// tooling can verify a published result.
	ComputeWinningPicks(seed string, cfg models.GameConfig) ([]int, error)
}

// CategoryService defines the interface for lottery category operations
type CategoryService interface {
	CreateCategory(ctx context.Context, category *models.LotteryCategory) (*models.LotteryCategory, error)
	UpdateCategory(ctx context.Context, category *models.LotteryCategory) (*models.LotteryCategory, error)
	GetCategoryByID(ctx context.Context, id primitive.ObjectID) (*models.LotteryCategory, error)
	GetCategories(ctx context.Context, activeOnly bool) ([]*models.LotteryCategory, error)
	GetRolloverHistory(ctx context.Context, categoryID primitive.ObjectID, limit int) ([]*models.RolloverEvent, error)
}

// TicketService defines the interface for ticket purchase operations
type TicketService interface {
	BuyTickets(ctx context.Context, categoryID primitive.ObjectID, wallet string, numTickets int, picks [][]int) ([]*models.Ticket, error)
	GetTicketsByDraw(ctx context.Context, drawID primitive.ObjectID) ([]*models.Ticket, error)
}

// WinnerService defines the interface for winner announcement queries
type WinnerService interface {
	GetRecentWinners(ctx context.Context, limit int) ([]models.RecentWinnerInfo, error)
}
