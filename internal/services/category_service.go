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

// Compile-time check to ensure CategoryServiceImpl implements CategoryService
var _ CategoryService = (*CategoryServiceImpl)(nil)

// CategoryServiceImpl manages lottery category configuration.
type CategoryServiceImpl struct {
	categoryRepo      repositories.CategoryRepository
	rolloverEventRepo repositories.RolloverEventRepository
}

// NewCategoryService creates a new CategoryServiceImpl
func NewCategoryService(categoryRepo repositories.CategoryRepository, rolloverEventRepo repositories.RolloverEventRepository) *CategoryServiceImpl {
	return &CategoryServiceImpl{
		categoryRepo:      categoryRepo,
		rolloverEventRepo: rolloverEventRepo,
	}
}

// CreateCategory validates and stores a new lottery category
func (s *CategoryServiceImpl) CreateCategory(ctx context.Context, category *models.LotteryCategory) (*models.LotteryCategory, error) {
	if err := validateCategory(category); err != nil {
		return nil, err
	}

	now := time.Now()
	category.CreatedAt = now
	category.UpdatedAt = now
	category.CurrentRolloverAmount = 0

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		slog.Error("Failed to create category", "error", err, "name", category.Name)
		return nil, fmt.Errorf("%w: save category: %v", ErrUnavailable, err)
	}

	slog.Info("Category created", "categoryId", category.ID.Hex(), "name", category.Name,
		"gameType", category.GameType)
	return category, nil
}

// UpdateCategory validates and stores changes to an existing category. The
// rollover accumulator is never writable through this path; it belongs to
// the draw engine.
func (s *CategoryServiceImpl) UpdateCategory(ctx context.Context, category *models.LotteryCategory) (*models.LotteryCategory, error) {
	if err := validateCategory(category); err != nil {
		return nil, err
	}

	existing, err := s.categoryRepo.FindByID(ctx, category.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: category %s", ErrNotFound, category.ID.Hex())
		}
		return nil, fmt.Errorf("%w: fetch category: %v", ErrUnavailable, err)
	}

	category.CurrentRolloverAmount = existing.CurrentRolloverAmount
	category.CreatedAt = existing.CreatedAt
	category.UpdatedAt = time.Now()

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("%w: update category: %v", ErrUnavailable, err)
	}

	slog.Info("Category updated", "categoryId", category.ID.Hex(), "name", category.Name)
	return category, nil
}

// GetCategoryByID retrieves a category by its ID
func (s *CategoryServiceImpl) GetCategoryByID(ctx context.Context, id primitive.ObjectID) (*models.LotteryCategory, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: category %s", ErrNotFound, id.Hex())
		}
		return nil, fmt.Errorf("%w: fetch category: %v", ErrUnavailable, err)
	}
	return category, nil
}

// GetCategories retrieves all categories, optionally only the active ones
func (s *CategoryServiceImpl) GetCategories(ctx context.Context, activeOnly bool) ([]*models.LotteryCategory, error) {
	var (
		categories []*models.LotteryCategory
		err        error
	)
	if activeOnly {
		categories, err = s.categoryRepo.FindActive(ctx)
	} else {
		categories, err = s.categoryRepo.FindAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: fetch categories: %v", ErrUnavailable, err)
	}
	return categories, nil
}

// GetRolloverHistory retrieves a category's rollover audit trail
func (s *CategoryServiceImpl) GetRolloverHistory(ctx context.Context, categoryID primitive.ObjectID, limit int) ([]*models.RolloverEvent, error) {
	events, err := s.rolloverEventRepo.FindByCategory(ctx, categoryID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch rollover history: %v", ErrUnavailable, err)
	}
	return events, nil
}

func validateCategory(category *models.LotteryCategory) error {
	if category.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if category.TicketPrice < 0 {
		return fmt.Errorf("%w: ticket price cannot be negative", ErrValidation)
	}
	if category.BasePrizePool < 0 {
		return fmt.Errorf("%w: base prize pool cannot be negative", ErrValidation)
	}
	if category.WinnerFeePercentage < 0 || category.WinnerFeePercentage > 100 {
		return fmt.Errorf("%w: winner fee percentage must be between 0 and 100", ErrValidation)
	}

	switch category.GameType {
	case models.GameTypeRaffle:
		// No game config needed.
	case models.GameTypePickNDigits:
		if err := validateGameConfig(category.GameConfig); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown game type %q", ErrValidation, category.GameType)
	}

	switch category.DrawIntervalType {
	case models.DrawIntervalMinutes, models.DrawIntervalHourly, models.DrawIntervalDaily,
		models.DrawIntervalWeekly, models.DrawIntervalManual:
	default:
		return fmt.Errorf("%w: unknown draw interval type %q", ErrValidation, category.DrawIntervalType)
	}

	if len(category.PrizeTiers) == 0 {
		return fmt.Errorf("%w: at least one prize tier is required", ErrValidation)
	}
	seen := make(map[string]bool, len(category.PrizeTiers))
	for _, tier := range category.PrizeTiers {
		if tier.TierName == "" {
			return fmt.Errorf("%w: every prize tier needs a name", ErrValidation)
		}
		if seen[tier.TierName] {
			return fmt.Errorf("%w: duplicate prize tier %q", ErrValidation, tier.TierName)
		}
		seen[tier.TierName] = true

		hasFixed := tier.FixedPrizeAmount != nil
		hasPercentage := tier.PercentageOfPrizePool != nil
		if hasFixed == hasPercentage {
			return fmt.Errorf("%w: tier %q must set exactly one of fixed amount or pool percentage", ErrValidation, tier.TierName)
		}
		if hasFixed && *tier.FixedPrizeAmount < 0 {
			return fmt.Errorf("%w: tier %q fixed amount cannot be negative", ErrValidation, tier.TierName)
		}
		if hasPercentage && (*tier.PercentageOfPrizePool <= 0 || *tier.PercentageOfPrizePool > 100) {
			return fmt.Errorf("%w: tier %q percentage must be in (0, 100]", ErrValidation, tier.TierName)
		}
		if category.GameType == models.GameTypePickNDigits && tier.MatchesRequired <= 0 {
			return fmt.Errorf("%w: tier %q needs a positive match count", ErrValidation, tier.TierName)
		}
	}
	return nil
}

func validateGameConfig(cfg *models.GameConfig) error {
	if cfg == nil {
		return fmt.Errorf("%w: pick-N categories require a game config", ErrValidation)
	}
	if cfg.NumPicks <= 0 {
		return fmt.Errorf("%w: num_picks must be positive", ErrValidation)
	}
	if cfg.MaxDigit < cfg.MinDigit {
		return fmt.Errorf("%w: max_digit must be at least min_digit", ErrValidation)
	}
	rangeSize := cfg.MaxDigit - cfg.MinDigit + 1
	if !cfg.AllowDuplicates && cfg.NumPicks > rangeSize {
		return fmt.Errorf("%w: cannot draw %d distinct picks from a range of %d", ErrValidation, cfg.NumPicks, rangeSize)
	}
	return nil
}
