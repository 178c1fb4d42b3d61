// Package memory provides mutex-guarded in-memory implementations of the
// repository interfaces. They back the service tests and mirror the mongo
// implementations' semantics, including the status-guarded conditional
// updates on draws.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bahatiirene/xrpl-lottery-backend/internal/models"
	"github.com/bahatiirene/xrpl-lottery-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CategoryRepository is an in-memory repositories.CategoryRepository
type CategoryRepository struct {
	mu         sync.RWMutex
	categories map[primitive.ObjectID]*models.LotteryCategory
}

// NewCategoryRepository creates an empty in-memory category repository
func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{categories: make(map[primitive.ObjectID]*models.LotteryCategory)}
}

func (r *CategoryRepository) Create(ctx context.Context, category *models.LotteryCategory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if category.ID.IsZero() {
		category.ID = primitive.NewObjectID()
	}
	category.CreatedAt = time.Now()
	category.UpdatedAt = time.Now()
	clone := *category
	r.categories[category.ID] = &clone
	return nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.LotteryCategory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	category, ok := r.categories[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *category
	return &clone, nil
}

func (r *CategoryRepository) FindAll(ctx context.Context) ([]*models.LotteryCategory, error) {
	return r.filter(func(*models.LotteryCategory) bool { return true }), nil
}

func (r *CategoryRepository) FindActive(ctx context.Context) ([]*models.LotteryCategory, error) {
	return r.filter(func(c *models.LotteryCategory) bool { return c.IsActive }), nil
}

func (r *CategoryRepository) Update(ctx context.Context, category *models.LotteryCategory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[category.ID]; !ok {
		return repositories.ErrNotFound
	}
	category.UpdatedAt = time.Now()
	clone := *category
	r.categories[category.ID] = &clone
	return nil
}

func (r *CategoryRepository) UpdateRolloverAmount(ctx context.Context, id primitive.ObjectID, amount float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	category, ok := r.categories[id]
	if !ok {
		return repositories.ErrNotFound
	}
	category.CurrentRolloverAmount = amount
	category.UpdatedAt = time.Now()
	return nil
}

func (r *CategoryRepository) filter(keep func(*models.LotteryCategory) bool) []*models.LotteryCategory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.LotteryCategory, 0)
	for _, c := range r.categories {
		if keep(c) {
			clone := *c
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// DrawRepository is an in-memory repositories.DrawRepository
type DrawRepository struct {
	mu    sync.RWMutex
	draws map[primitive.ObjectID]*models.Draw
}

// NewDrawRepository creates an empty in-memory draw repository
func NewDrawRepository() *DrawRepository {
	return &DrawRepository{draws: make(map[primitive.ObjectID]*models.Draw)}
}

func (r *DrawRepository) Create(ctx context.Context, draw *models.Draw) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if draw.ID.IsZero() {
		draw.ID = primitive.NewObjectID()
	}
	draw.CreatedAt = time.Now()
	draw.UpdatedAt = time.Now()
	clone := *draw
	r.draws[draw.ID] = &clone
	return nil
}

func (r *DrawRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Draw, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	draw, ok := r.draws[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *draw
	return &clone, nil
}

func (r *DrawRepository) FindByCategory(ctx context.Context, categoryID primitive.ObjectID, limit int) ([]*models.Draw, error) {
	draws := r.filter(func(d *models.Draw) bool { return d.CategoryID == categoryID })
	sort.Slice(draws, func(i, j int) bool {
		return draws[i].ScheduledCloseTime.After(draws[j].ScheduledCloseTime)
	})
	if limit > 0 && len(draws) > limit {
		draws = draws[:limit]
	}
	return draws, nil
}

func (r *DrawRepository) FindOpenByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]*models.Draw, error) {
	draws := r.filter(func(d *models.Draw) bool {
		return d.CategoryID == categoryID && d.Status == models.DrawStatusOpen
	})
	sort.Slice(draws, func(i, j int) bool {
		return draws[i].ScheduledCloseTime.Before(draws[j].ScheduledCloseTime)
	})
	return draws, nil
}

func (r *DrawRepository) FindDueToOpen(ctx context.Context, now time.Time) ([]*models.Draw, error) {
	return r.filter(func(d *models.Draw) bool {
		return d.Status == models.DrawStatusPendingOpen && !d.ScheduledOpenTime.After(now)
	}), nil
}

func (r *DrawRepository) FindDueToClose(ctx context.Context, now time.Time) ([]*models.Draw, error) {
	return r.filter(func(d *models.Draw) bool {
		return d.Status == models.DrawStatusOpen && !d.ScheduledCloseTime.After(now)
	}), nil
}

func (r *DrawRepository) FindCompleted(ctx context.Context, limit int) ([]*models.Draw, error) {
	draws := r.filter(func(d *models.Draw) bool { return d.Status == models.DrawStatusCompleted })
	sort.Slice(draws, func(i, j int) bool {
		ti, tj := draws[i].ActualCloseTime, draws[j].ActualCloseTime
		if ti == nil || tj == nil {
			return tj == nil
		}
		return ti.After(*tj)
	})
	if limit > 0 && len(draws) > limit {
		draws = draws[:limit]
	}
	return draws, nil
}

func (r *DrawRepository) MarkOpen(ctx context.Context, id primitive.ObjectID, openedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	draw, ok := r.draws[id]
	if !ok || draw.Status != models.DrawStatusPendingOpen {
		return repositories.ErrConflict
	}
	draw.Status = models.DrawStatusOpen
	opened := openedAt
	draw.ActualOpenTime = &opened
	draw.UpdatedAt = time.Now()
	return nil
}

func (r *DrawRepository) PersistResolution(ctx context.Context, draw *models.Draw) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.draws[draw.ID]
	if !ok {
		return repositories.ErrConflict
	}
	switch stored.Status {
	case models.DrawStatusPendingOpen, models.DrawStatusOpen, models.DrawStatusClosed:
	default:
		return repositories.ErrConflict
	}
	stored.Status = models.DrawStatusCompleted
	stored.Participants = draw.Participants
	stored.WinnersByTier = draw.WinnersByTier
	stored.WinningSelection = draw.WinningSelection
	stored.RandomnessSeed = draw.RandomnessSeed
	stored.ActualCloseTime = draw.ActualCloseTime
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *DrawRepository) Cancel(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	draw, ok := r.draws[id]
	if !ok {
		return repositories.ErrConflict
	}
	if draw.Status != models.DrawStatusPendingOpen && draw.Status != models.DrawStatusOpen {
		return repositories.ErrConflict
	}
	draw.Status = models.DrawStatusCancelled
	draw.UpdatedAt = time.Now()
	return nil
}

func (r *DrawRepository) filter(keep func(*models.Draw) bool) []*models.Draw {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.Draw, 0)
	for _, d := range r.draws {
		if keep(d) {
			clone := *d
			out = append(out, &clone)
		}
	}
	return out
}

// TicketRepository is an in-memory repositories.TicketRepository
type TicketRepository struct {
	mu      sync.RWMutex
	tickets []*models.Ticket
}

// NewTicketRepository creates an empty in-memory ticket repository
func NewTicketRepository() *TicketRepository {
	return &TicketRepository{}
}

func (r *TicketRepository) CreateMany(ctx context.Context, tickets []*models.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, t := range tickets {
		if t.ID.IsZero() {
			t.ID = primitive.NewObjectID()
		}
		t.CreatedAt = now
		clone := *t
		r.tickets = append(r.tickets, &clone)
	}
	return nil
}

func (r *TicketRepository) FindByDraw(ctx context.Context, drawID primitive.ObjectID) ([]*models.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.Ticket, 0)
	for _, t := range r.tickets {
		if t.DrawID == drawID {
			clone := *t
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *TicketRepository) DistinctEntrants(ctx context.Context, drawID primitive.ObjectID) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]bool)
	wallets := make([]string, 0)
	for _, t := range r.tickets {
		if t.DrawID == drawID && !seen[t.WalletAddress] {
			seen[t.WalletAddress] = true
			wallets = append(wallets, t.WalletAddress)
		}
	}
	return wallets, nil
}

// RolloverEventRepository is an in-memory repositories.RolloverEventRepository
type RolloverEventRepository struct {
	mu     sync.RWMutex
	events []*models.RolloverEvent
}

// NewRolloverEventRepository creates an empty in-memory rollover event repository
func NewRolloverEventRepository() *RolloverEventRepository {
	return &RolloverEventRepository{}
}

func (r *RolloverEventRepository) Create(ctx context.Context, event *models.RolloverEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	event.CreatedAt = time.Now()
	clone := *event
	r.events = append(r.events, &clone)
	return nil
}

func (r *RolloverEventRepository) FindByCategory(ctx context.Context, categoryID primitive.ObjectID, limit int) ([]*models.RolloverEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.RolloverEvent, 0)
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].CategoryID == categoryID {
			clone := *r.events[i]
			out = append(out, &clone)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}
