package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bahatiirene/xrpl-lottery-backend/internal/models"
	"github.com/bahatiirene/xrpl-lottery-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure TicketServiceImpl implements TicketService
var _ TicketService = (*TicketServiceImpl)(nil)

const maxTicketsPerPurchase = 100

// TicketServiceImpl handles ticket purchases into open draws.
type TicketServiceImpl struct {
	ticketRepo   repositories.TicketRepository
	drawRepo     repositories.DrawRepository
	categoryRepo repositories.CategoryRepository
}

// NewTicketService creates a new TicketServiceImpl
func NewTicketService(
	ticketRepo repositories.TicketRepository,
	drawRepo repositories.DrawRepository,
	categoryRepo repositories.CategoryRepository,
) *TicketServiceImpl {
	return &TicketServiceImpl{
		ticketRepo:   ticketRepo,
		drawRepo:     drawRepo,
		categoryRepo: categoryRepo,
	}
}

// BuyTickets creates tickets for a wallet in the category's currently open
// draw. Pick-N tickets carry one pick set per ticket; raffle tickets carry
// none and picks must be omitted.
func (s *TicketServiceImpl) BuyTickets(ctx context.Context, categoryID primitive.ObjectID, wallet string, numTickets int, picks [][]int) ([]*models.Ticket, error) {
	if wallet == "" {
		return nil, fmt.Errorf("%w: wallet address is required", ErrValidation)
	}
	if numTickets <= 0 || numTickets > maxTicketsPerPurchase {
		return nil, fmt.Errorf("%w: number of tickets must be between 1 and %d", ErrValidation, maxTicketsPerPurchase)
	}

	category, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: category %s", ErrNotFound, categoryID.Hex())
		}
		return nil, fmt.Errorf("%w: fetch category: %v", ErrUnavailable, err)
	}
	if !category.IsActive {
		return nil, fmt.Errorf("%w: category %s is not active", ErrValidation, category.Name)
	}

	switch category.GameType {
	case models.GameTypeRaffle:
		if len(picks) != 0 {
			return nil, fmt.Errorf("%w: raffle tickets do not carry picks", ErrValidation)
		}
	case models.GameTypePickNDigits:
		if len(picks) != numTickets {
			return nil, fmt.Errorf("%w: expected %d pick sets, got %d", ErrValidation, numTickets, len(picks))
		}
		for i, set := range picks {
			if err := validatePicks(set, category.GameConfig); err != nil {
				return nil, fmt.Errorf("ticket %d: %w", i+1, err)
			}
		}
	default:
		return nil, fmt.Errorf("%w: unknown game type %q", ErrValidation, category.GameType)
	}

	openDraws, err := s.drawRepo.FindOpenByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: find open draw: %v", ErrUnavailable, err)
	}
	if len(openDraws) == 0 {
		return nil, fmt.Errorf("%w: no open draw for category %s", ErrNotFound, category.Name)
	}
	draw := openDraws[0]

	now := time.Now()
	tickets := make([]*models.Ticket, 0, numTickets)
	for i := 0; i < numTickets; i++ {
		ticket := &models.Ticket{
			DrawID:        draw.ID,
			CategoryID:    categoryID,
			WalletAddress: wallet,
			CreatedAt:     now,
		}
		if category.GameType == models.GameTypePickNDigits {
			ticket.Picks = picks[i]
		}
		tickets = append(tickets, ticket)
	}

	if err := s.ticketRepo.CreateMany(ctx, tickets); err != nil {
		return nil, fmt.Errorf("%w: save tickets: %v", ErrUnavailable, err)
	}

	slog.Info("Tickets purchased", "drawId", draw.ID.Hex(), "wallet", wallet, "count", numTickets)
	return tickets, nil
}

// GetTicketsByDraw retrieves all tickets for a draw
func (s *TicketServiceImpl) GetTicketsByDraw(ctx context.Context, drawID primitive.ObjectID) ([]*models.Ticket, error) {
	tickets, err := s.ticketRepo.FindByDraw(ctx, drawID)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch tickets: %v", ErrUnavailable, err)
	}
	return tickets, nil
}

func validatePicks(picks []int, cfg *models.GameConfig) error {
	if cfg == nil {
		return fmt.Errorf("%w: category has no game config", ErrValidation)
	}
	if len(picks) != cfg.NumPicks {
		return fmt.Errorf("%w: expected %d picks, got %d", ErrValidation, cfg.NumPicks, len(picks))
	}
	seen := make(map[int]bool, len(picks))
	for _, p := range picks {
		if p < cfg.MinDigit || p > cfg.MaxDigit {
			return fmt.Errorf("%w: pick %d outside range [%d, %d]", ErrValidation, p, cfg.MinDigit, cfg.MaxDigit)
		}
		if !cfg.AllowDuplicates && seen[p] {
			return fmt.Errorf("%w: duplicate pick %d", ErrValidation, p)
		}
		seen[p] = true
	}
	return nil
}
