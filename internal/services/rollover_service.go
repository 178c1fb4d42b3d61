package services

import (
	"context"
	"fmt"
	"time"

	"github.com/bahatiirene/xrpl-lottery-backend/internal/engine"
	"github.com/bahatiirene/xrpl-lottery-backend/internal/models"
	"github.com/bahatiirene/xrpl-lottery-backend/internal/repositories"
	"golang.org/x/exp/slog"
)

// RolloverService updates a category's rollover accumulator after each
// resolved draw and records an audit event for every change. It subscribes
// to the event bus ahead of follow-up draw scheduling so the next draw's
// pool snapshot includes this draw's rollover.
type RolloverService struct {
	categoryRepo repositories.CategoryRepository
	eventRepo    repositories.RolloverEventRepository
}

// NewRolloverService creates a new RolloverService
func NewRolloverService(categoryRepo repositories.CategoryRepository, eventRepo repositories.RolloverEventRepository) *RolloverService {
	return &RolloverService{categoryRepo: categoryRepo, eventRepo: eventRepo}
}

// HandleDrawResolved applies the rollover rules for one resolved draw.
func (s *RolloverService) HandleDrawResolved(ctx context.Context, event models.DrawResolvedEvent) error {
	category := event.Category
	outcome := engine.ComputeRollover(category, event.Draw.WinnersByTier)
	if !outcome.Changed {
		return nil
	}

	if err := s.categoryRepo.UpdateRolloverAmount(ctx, category.ID, outcome.NewAmount); err != nil {
		return fmt.Errorf("update rollover amount for category %s: %w", category.ID.Hex(), err)
	}

	record := &models.RolloverEvent{
		CategoryID:        category.ID,
		DrawID:            event.Draw.ID,
		JackpotWon:        outcome.JackpotWon,
		PreviousAmount:    outcome.PreviousAmount,
		NewAmount:         outcome.NewAmount,
		ContributingTiers: outcome.ContributingTiers,
		CreatedAt:         time.Now(),
	}
	if err := s.eventRepo.Create(ctx, record); err != nil {
		// The accumulator update already landed; losing the audit record is
		// not worth failing the ledger over.
		slog.Error("Failed to record rollover event", "error", err,
			"categoryId", category.ID.Hex(), "drawId", event.Draw.ID.Hex())
	}

	// Keep the in-memory category consistent for subscribers running after
	// this one in the same delivery.
	category.CurrentRolloverAmount = outcome.NewAmount

	slog.Info("Rollover ledger updated", "categoryId", category.ID.Hex(),
		"drawId", event.Draw.ID.Hex(), "jackpotWon", outcome.JackpotWon,
		"previous", outcome.PreviousAmount, "new", outcome.NewAmount)
	return nil
}
