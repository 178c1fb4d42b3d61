package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bahatiirene/xrpl-lottery-backend/internal/models"
	"github.com/bahatiirene/xrpl-lottery-backend/internal/rng"
)

func floatPtr(v float64) *float64 { return &v }

func raffleCategory(tiers ...models.PrizeTierConfig) *models.LotteryCategory {
	return &models.LotteryCategory{
		Name:       "Test Raffle",
		GameType:   models.GameTypeRaffle,
		PrizeTiers: tiers,
	}
}

func tickets(ids ...string) []models.TicketEntry {
	out := make([]models.TicketEntry, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.TicketEntry{TicketID: id, WalletAddress: "wallet-" + id})
	}
	return out
}

func TestRaffleSelectionDeterministic(t *testing.T) {
	category := raffleCategory(
		models.PrizeTierConfig{TierName: "Grand", MatchesRequired: 1, PercentageOfPrizePool: floatPtr(70)},
		models.PrizeTierConfig{TierName: "Second", MatchesRequired: 2, PercentageOfPrizePool: floatPtr(20)},
	)
	pool := tickets("t1", "t2", "t3", "t4", "t5")

	first, err := SelectWinners(category, "abc123", pool)
	require.NoError(t, err)
	second, err := SelectWinners(category, "abc123", pool)
	require.NoError(t, err)
	assert.Equal(t, first.ByTier, second.ByTier)
}

func TestRaffleNoTicketWinsTwice(t *testing.T) {
	category := raffleCategory(
		models.PrizeTierConfig{TierName: "First", MatchesRequired: 1, PercentageOfPrizePool: floatPtr(50)},
		models.PrizeTierConfig{TierName: "Second", MatchesRequired: 2, PercentageOfPrizePool: floatPtr(30)},
		models.PrizeTierConfig{TierName: "Third", MatchesRequired: 3, PercentageOfPrizePool: floatPtr(20)},
	)
	pool := tickets("a", "b", "c", "d")

	sel, err := SelectWinners(category, "ledgerhash42", pool)
	require.NoError(t, err)

	seen := make(map[string]bool)
	total := 0
	for tier, winners := range sel.ByTier {
		for _, w := range winners {
			assert.False(t, seen[w.TicketID], "ticket %s won twice (tier %s)", w.TicketID, tier)
			seen[w.TicketID] = true
			total++
		}
	}
	assert.Equal(t, 3, total)
}

func TestRaffleStopsWhenPoolExhausted(t *testing.T) {
	category := raffleCategory(
		models.PrizeTierConfig{TierName: "First", MatchesRequired: 1, PercentageOfPrizePool: floatPtr(60)},
		models.PrizeTierConfig{TierName: "Second", MatchesRequired: 2, PercentageOfPrizePool: floatPtr(40)},
	)
	pool := tickets("only")

	sel, err := SelectWinners(category, "seed", pool)
	require.NoError(t, err)
	require.Len(t, sel.ByTier["First"], 1)
	assert.Empty(t, sel.ByTier["Second"])
}

func TestRaffleEmptyPool(t *testing.T) {
	category := raffleCategory(
		models.PrizeTierConfig{TierName: "First", MatchesRequired: 1, PercentageOfPrizePool: floatPtr(100)},
	)
	sel, err := SelectWinners(category, "seed", nil)
	require.NoError(t, err)
	assert.Empty(t, sel.ByTier)
}

func TestPickNBestTierOnly(t *testing.T) {
	category := &models.LotteryCategory{
		Name:     "Pick 5",
		GameType: models.GameTypePickNDigits,
		GameConfig: &models.GameConfig{
			NumPicks: 5, MinDigit: 0, MaxDigit: 9, AllowDuplicates: false,
		},
		PrizeTiers: []models.PrizeTierConfig{
			{TierName: "Jackpot - Match 5", MatchesRequired: 5, PercentageOfPrizePool: floatPtr(70), IsJackpotTier: true},
			{TierName: "Match 3", MatchesRequired: 3, PercentageOfPrizePool: floatPtr(20)},
		},
	}

	winning, err := rng.WinningPicks("seed", *category.GameConfig)
	require.NoError(t, err)

	entries := []models.TicketEntry{
		// Exact match: qualifies for both 5 and 3, must land only in the 5 tier.
		{TicketID: "full", WalletAddress: "w-full", Picks: winning},
		// Three of the five winning digits.
		{TicketID: "partial", WalletAddress: "w-partial", Picks: append([]int{}, winning[:3]...)},
		// No picks at all; ignored.
		{TicketID: "bare", WalletAddress: "w-bare"},
	}

	sel, err := SelectWinners(category, "seed", entries)
	require.NoError(t, err)
	assert.Equal(t, winning, sel.WinningSelection)

	require.Len(t, sel.ByTier["Jackpot - Match 5"], 1)
	assert.Equal(t, "full", sel.ByTier["Jackpot - Match 5"][0].TicketID)

	require.Len(t, sel.ByTier["Match 3"], 1)
	assert.Equal(t, "partial", sel.ByTier["Match 3"][0].TicketID)
}

func TestPickNMatchIsOrderIndependent(t *testing.T) {
	category := &models.LotteryCategory{
		Name:     "Pick 3",
		GameType: models.GameTypePickNDigits,
		GameConfig: &models.GameConfig{
			NumPicks: 3, MinDigit: 0, MaxDigit: 9, AllowDuplicates: false,
		},
		PrizeTiers: []models.PrizeTierConfig{
			{TierName: "Match 3", MatchesRequired: 3, PercentageOfPrizePool: floatPtr(100)},
		},
	}

	winning, err := rng.WinningPicks("order_seed", *category.GameConfig)
	require.NoError(t, err)

	reversed := []int{winning[2], winning[1], winning[0]}
	sel, err := SelectWinners(category, "order_seed", []models.TicketEntry{
		{TicketID: "rev", WalletAddress: "w", Picks: reversed},
	})
	require.NoError(t, err)
	require.Len(t, sel.ByTier["Match 3"], 1)
}

func TestPickNMissingGameConfig(t *testing.T) {
	category := &models.LotteryCategory{
		Name:     "Broken",
		GameType: models.GameTypePickNDigits,
	}
	_, err := SelectWinners(category, "seed", tickets("t1"))
	assert.ErrorIs(t, err, rng.ErrInvalidConfig)
}

func TestUnknownGameType(t *testing.T) {
	category := &models.LotteryCategory{Name: "Weird", GameType: "roulette"}
	_, err := SelectWinners(category, "seed", tickets("t1"))
	assert.ErrorIs(t, err, rng.ErrInvalidConfig)
}
