package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bahatiirene/xrpl-lottery-backend/internal/models"
	"github.com/bahatiirene/xrpl-lottery-backend/internal/repositories/memory"
	"github.com/bahatiirene/xrpl-lottery-backend/internal/services"
)

func newCategoryService() (*services.CategoryServiceImpl, *memory.CategoryRepository) {
	repo := memory.NewCategoryRepository()
	return services.NewCategoryService(repo, memory.NewRolloverEventRepository()), repo
}

func validPickCategory() *models.LotteryCategory {
	return &models.LotteryCategory{
		Name:             "Daily Pick 3",
		GameType:         models.GameTypePickNDigits,
		GameConfig:       &models.GameConfig{NumPicks: 3, MinDigit: 0, MaxDigit: 9},
		DrawIntervalType: models.DrawIntervalDaily,
		TicketPrice:      2,
		BasePrizePool:    500,
		IsActive:         true,
		PrizeTiers: []models.PrizeTierConfig{
			{TierName: "match_3", MatchesRequired: 3, PercentageOfPrizePool: floatPtr(70), IsJackpotTier: true, ContributesToRolloverIfUnwon: true},
			{TierName: "match_2", MatchesRequired: 2, FixedPrizeAmount: floatPtr(10)},
		},
	}
}

func TestCreateCategory(t *testing.T) {
	svc, _ := newCategoryService()
	created, err := svc.CreateCategory(context.Background(), validPickCategory())
	require.NoError(t, err)
	assert.False(t, created.ID.IsZero())
	assert.Equal(t, 0.0, created.CurrentRolloverAmount)
}

func TestCreateCategoryValidation(t *testing.T) {
	svc, _ := newCategoryService()
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*models.LotteryCategory)
	}{
		{"missing name", func(c *models.LotteryCategory) { c.Name = "" }},
		{"unknown game type", func(c *models.LotteryCategory) { c.GameType = "keno" }},
		{"pick-N without game config", func(c *models.LotteryCategory) { c.GameConfig = nil }},
		{"zero picks", func(c *models.LotteryCategory) { c.GameConfig.NumPicks = 0 }},
		{"inverted digit range", func(c *models.LotteryCategory) { c.GameConfig.MinDigit = 9; c.GameConfig.MaxDigit = 0 }},
		{"more distinct picks than range", func(c *models.LotteryCategory) {
			c.GameConfig = &models.GameConfig{NumPicks: 5, MinDigit: 1, MaxDigit: 3}
		}},
		{"no prize tiers", func(c *models.LotteryCategory) { c.PrizeTiers = nil }},
		{"duplicate tier names", func(c *models.LotteryCategory) {
			c.PrizeTiers[1].TierName = c.PrizeTiers[0].TierName
		}},
		{"tier with both prize kinds", func(c *models.LotteryCategory) {
			c.PrizeTiers[0].FixedPrizeAmount = floatPtr(5)
		}},
		{"tier with neither prize kind", func(c *models.LotteryCategory) {
			c.PrizeTiers[0].PercentageOfPrizePool = nil
		}},
		{"percentage over 100", func(c *models.LotteryCategory) {
			c.PrizeTiers[0].PercentageOfPrizePool = floatPtr(150)
		}},
		{"fee over 100", func(c *models.LotteryCategory) { c.WinnerFeePercentage = 120 }},
		{"unknown interval type", func(c *models.LotteryCategory) { c.DrawIntervalType = "fortnightly" }},
		{"pick tier without match count", func(c *models.LotteryCategory) { c.PrizeTiers[0].MatchesRequired = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			category := validPickCategory()
			tc.mutate(category)
			_, err := svc.CreateCategory(ctx, category)
			assert.ErrorIs(t, err, services.ErrValidation)
		})
	}
}

func TestUpdateCategoryPreservesRollover(t *testing.T) {
	svc, repo := newCategoryService()
	ctx := context.Background()

	created, err := svc.CreateCategory(ctx, validPickCategory())
	require.NoError(t, err)
	require.NoError(t, repo.UpdateRolloverAmount(ctx, created.ID, 77.5))

	created.Name = "Daily Pick 3 (renamed)"
	created.CurrentRolloverAmount = 0 // client payloads cannot reset the ledger
	updated, err := svc.UpdateCategory(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, 77.5, updated.CurrentRolloverAmount)
	assert.Equal(t, "Daily Pick 3 (renamed)", updated.Name)
}

func TestGetCategoriesActiveOnly(t *testing.T) {
	svc, _ := newCategoryService()
	ctx := context.Background()

	active := validPickCategory()
	_, err := svc.CreateCategory(ctx, active)
	require.NoError(t, err)

	inactive := validPickCategory()
	inactive.Name = "Retired Pick 3"
	inactive.IsActive = false
	_, err = svc.CreateCategory(ctx, inactive)
	require.NoError(t, err)

	all, err := svc.GetCategories(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyActive, err := svc.GetCategories(ctx, true)
	require.NoError(t, err)
	require.Len(t, onlyActive, 1)
	assert.Equal(t, "Daily Pick 3", onlyActive[0].Name)
}
