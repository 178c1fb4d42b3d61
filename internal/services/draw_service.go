package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bahatiirene/xrpl-lottery-backend/internal/engine"
	"github.com/bahatiirene/xrpl-lottery-backend/internal/models"
	"github.com/bahatiirene/xrpl-lottery-backend/internal/repositories"
	"github.com/bahatiirene/xrpl-lottery-backend/internal/rng"
	"github.com/bahatiirene/xrpl-lottery-backend/pkg/xrpl"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure DrawServiceImpl implements DrawService
var _ DrawService = (*DrawServiceImpl)(nil)

// DrawServiceImpl is the draw lifecycle controller. It validates state
// transitions, drives randomness derivation, winner selection and prize
// calculation, and commits the resolved result exactly once via a
// status-guarded conditional write.
type DrawServiceImpl struct {
	drawRepo     repositories.DrawRepository
	categoryRepo repositories.CategoryRepository
	ticketRepo   repositories.TicketRepository
	randomness   xrpl.RandomnessSource
	bus          *EventBus
	now          func() time.Time
}

// NewDrawService creates a new DrawServiceImpl
func NewDrawService(
	drawRepo repositories.DrawRepository,
	categoryRepo repositories.CategoryRepository,
	ticketRepo repositories.TicketRepository,
	randomness xrpl.RandomnessSource,
	bus *EventBus,
) *DrawServiceImpl {
	return &DrawServiceImpl{
		drawRepo:     drawRepo,
		categoryRepo: categoryRepo,
		ticketRepo:   ticketRepo,
		randomness:   randomness,
		bus:          bus,
		now:          time.Now,
	}
}

// WithClock overrides the controller's clock. Test hook.
func (s *DrawServiceImpl) WithClock(now func() time.Time) *DrawServiceImpl {
	s.now = now
	return s
}

// ScheduleDraw creates a pending draw for a category. The draw's prize pool
// is snapshotted here as category base pool + accumulated rollover and never
// recomputed afterwards.
func (s *DrawServiceImpl) ScheduleDraw(ctx context.Context, categoryID primitive.ObjectID, openTime, closeTime time.Time) (*models.Draw, error) {
	category, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: category %s", ErrNotFound, categoryID.Hex())
		}
		return nil, fmt.Errorf("%w: fetch category: %v", ErrUnavailable, err)
	}
	if !closeTime.After(openTime) {
		return nil, fmt.Errorf("%w: close time must be after open time", ErrValidation)
	}

	draw := &models.Draw{
		CategoryID:         category.ID,
		ScheduledOpenTime:  openTime,
		ScheduledCloseTime: closeTime,
		Status:             models.DrawStatusPendingOpen,
		BasePrizePool:      category.BasePrizePool + category.CurrentRolloverAmount,
		Participants:       []string{},
		WinnersByTier:      []models.PrizeTierWinner{},
	}
	if err := s.drawRepo.Create(ctx, draw); err != nil {
		slog.Error("Failed to create draw", "error", err, "categoryId", categoryID.Hex())
		return nil, fmt.Errorf("%w: save scheduled draw: %v", ErrUnavailable, err)
	}

	slog.Info("Draw scheduled", "drawId", draw.ID.Hex(), "category", category.Name,
		"opens", openTime, "closes", closeTime, "prizePool", draw.BasePrizePool)
	return draw, nil
}

// OpenDraw transitions a pending draw to open. Legal only from pending_open
// and only once the scheduled open time has been reached.
func (s *DrawServiceImpl) OpenDraw(ctx context.Context, drawID primitive.ObjectID) (*models.Draw, error) {
	draw, err := s.findDraw(ctx, drawID)
	if err != nil {
		return nil, err
	}
	if draw.Status == models.DrawStatusOpen {
		// Lost an earlier race or retried; already where we want to be.
		return draw, nil
	}
	if draw.Status != models.DrawStatusPendingOpen {
		return nil, fmt.Errorf("%w: cannot open draw in state %s", ErrInvalidTransition, draw.Status)
	}
	now := s.now()
	if now.Before(draw.ScheduledOpenTime) {
		return nil, fmt.Errorf("%w: draw opens at %s", ErrInvalidTransition, draw.ScheduledOpenTime.Format(time.RFC3339))
	}

	if err := s.drawRepo.MarkOpen(ctx, drawID, now); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			// Someone else transitioned it; surface whatever state won.
			return s.findDraw(ctx, drawID)
		}
		return nil, fmt.Errorf("%w: mark draw open: %v", ErrUnavailable, err)
	}

	slog.Info("Draw opened", "drawId", drawID.Hex())
	return s.findDraw(ctx, drawID)
}

// CloseDraw resolves a draw. Re-invocation on a completed draw is a no-op
// returning the stored result, so client retries and concurrent closers are
// safe: exactly one resolution is ever persisted.
func (s *DrawServiceImpl) CloseDraw(ctx context.Context, drawID primitive.ObjectID) (*models.Draw, error) {
	draw, err := s.findDraw(ctx, drawID)
	if err != nil {
		return nil, err
	}
	if draw.Status == models.DrawStatusCompleted {
		return draw, nil
	}
	if draw.Status == models.DrawStatusCancelled {
		return nil, fmt.Errorf("%w: draw is cancelled", ErrInvalidTransition)
	}
	now := s.now()
	// A pending draw whose close time passed is closable too: the scheduler
	// may have missed the open window entirely.
	if draw.Status != models.DrawStatusOpen && !draw.CloseDue(now) {
		return nil, fmt.Errorf("%w: cannot close draw in state %s before %s",
			ErrInvalidTransition, draw.Status, draw.ScheduledCloseTime.Format(time.RFC3339))
	}

	category, err := s.categoryRepo.FindByID(ctx, draw.CategoryID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: category %s", ErrNotFound, draw.CategoryID.Hex())
		}
		return nil, fmt.Errorf("%w: fetch category: %v", ErrUnavailable, err)
	}

	tickets, err := s.ticketRepo.FindByDraw(ctx, drawID)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch tickets: %v", ErrUnavailable, err)
	}

	closedAt := now
	draw.ActualCloseTime = &closedAt
	draw.Participants = distinctWallets(tickets)

	if len(tickets) == 0 {
		// Resolved with no winners; no randomness is consumed.
		draw.WinnersByTier = []models.PrizeTierWinner{}
		slog.Info("Draw closed with no participants", "drawId", drawID.Hex())
	} else {
		seed, err := s.randomness.LatestLedgerHash(ctx)
		if err != nil {
			// Retryable: the draw stays open, a later close attempt will
			// fetch a fresh ledger hash. Never fall back to a default seed.
			return nil, fmt.Errorf("%w: fetch randomness: %v", ErrUnavailable, err)
		}

		selection, err := engine.SelectWinners(category, seed, ticketEntries(tickets))
		if err != nil {
			return nil, fmt.Errorf("select winners: %w", err)
		}
		draw.RandomnessSeed = seed
		draw.WinningSelection = selection.WinningSelection
		draw.WinnersByTier = engine.CalculatePrizes(category, draw.BasePrizePool, selection)
	}

	if err := s.drawRepo.PersistResolution(ctx, draw); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			// Someone else resolved it first; their result is the result.
			existing, findErr := s.findDraw(ctx, drawID)
			if findErr != nil {
				return nil, findErr
			}
			if existing.Status == models.DrawStatusCompleted {
				slog.Info("Draw was resolved concurrently, returning existing result", "drawId", drawID.Hex())
				return existing, nil
			}
			return nil, fmt.Errorf("%w: draw moved to state %s", ErrInvalidTransition, existing.Status)
		}
		return nil, fmt.Errorf("%w: persist resolution: %v", ErrUnavailable, err)
	}
	draw.Status = models.DrawStatusCompleted

	slog.Info("Draw resolved", "drawId", drawID.Hex(), "category", category.Name,
		"participants", len(draw.Participants), "winners", len(draw.WinnersByTier))

	if s.bus != nil {
		s.bus.PublishDrawResolved(models.DrawResolvedEvent{Draw: draw, Category: category})
	}
	return draw, nil
}

// ScheduleFollowUpDraw creates the next draw of a recurring category after
// one resolves. Registered on the event bus behind the rollover ledger so
// the new pool snapshot sees this draw's rollover. The next open time is the
// resolved draw's scheduled close time: cadence is kept, drift is accepted.
func (s *DrawServiceImpl) ScheduleFollowUpDraw(ctx context.Context, event models.DrawResolvedEvent) error {
	category := event.Category
	if !category.IsRecurring() {
		return nil
	}
	interval := category.DrawInterval()
	if interval <= 0 {
		return nil
	}
	openTime := event.Draw.ScheduledCloseTime
	_, err := s.ScheduleDraw(ctx, category.ID, openTime, openTime.Add(interval))
	if err != nil {
		return fmt.Errorf("schedule follow-up draw for category %s: %w", category.ID.Hex(), err)
	}
	return nil
}

// ProcessDueDraws opens every pending draw past its open time and closes
// every open draw past its close time. Individual failures are logged and
// skipped so one stuck draw cannot block the rest.
func (s *DrawServiceImpl) ProcessDueDraws(ctx context.Context) (int, int, error) {
	now := s.now()

	dueToOpen, err := s.drawRepo.FindDueToOpen(ctx, now)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: find draws due to open: %v", ErrUnavailable, err)
	}
	opened := 0
	for _, draw := range dueToOpen {
		if _, err := s.OpenDraw(ctx, draw.ID); err != nil {
			slog.Warn("Failed to open due draw", "error", err, "drawId", draw.ID.Hex())
			continue
		}
		opened++
	}

	dueToClose, err := s.drawRepo.FindDueToClose(ctx, now)
	if err != nil {
		return opened, 0, fmt.Errorf("%w: find draws due to close: %v", ErrUnavailable, err)
	}
	closed := 0
	for _, draw := range dueToClose {
		if _, err := s.CloseDraw(ctx, draw.ID); err != nil {
			slog.Warn("Failed to close due draw", "error", err, "drawId", draw.ID.Hex())
			continue
		}
		closed++
	}
	return opened, closed, nil
}

// GetDrawByID retrieves a draw by its ID
func (s *DrawServiceImpl) GetDrawByID(ctx context.Context, drawID primitive.ObjectID) (*models.Draw, error) {
	return s.findDraw(ctx, drawID)
}

// GetDrawHistory retrieves a category's draws, most recent first
func (s *DrawServiceImpl) GetDrawHistory(ctx context.Context, categoryID primitive.ObjectID, limit int) ([]*models.Draw, error) {
	draws, err := s.drawRepo.FindByCategory(ctx, categoryID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch draw history: %v", ErrUnavailable, err)
	}
	return draws, nil
}

// ComputeWinningPicks re-derives a pick-N selection for audit tooling.
func (s *DrawServiceImpl) ComputeWinningPicks(seed string, cfg models.GameConfig) ([]int, error) {
	return rng.WinningPicks(seed, cfg)
}

func (s *DrawServiceImpl) findDraw(ctx context.Context, drawID primitive.ObjectID) (*models.Draw, error) {
	draw, err := s.drawRepo.FindByID(ctx, drawID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: draw %s", ErrNotFound, drawID.Hex())
		}
		return nil, fmt.Errorf("%w: fetch draw: %v", ErrUnavailable, err)
	}
	return draw, nil
}

func distinctWallets(tickets []*models.Ticket) []string {
	seen := make(map[string]bool, len(tickets))
	wallets := make([]string, 0, len(tickets))
	for _, t := range tickets {
		if !seen[t.WalletAddress] {
			seen[t.WalletAddress] = true
			wallets = append(wallets, t.WalletAddress)
		}
	}
	return wallets
}

func ticketEntries(tickets []*models.Ticket) []models.TicketEntry {
	entries := make([]models.TicketEntry, 0, len(tickets))
	for _, t := range tickets {
		entries = append(entries, models.TicketEntry{
			TicketID:      t.ID.Hex(),
			WalletAddress: t.WalletAddress,
			Picks:         t.Picks,
		})
	}
	return entries
}
