package engine

import (
	"math"

	"golang.org/x/exp/slog"

	"github.com/bahatiirene/xrpl-lottery-backend/internal/models"
)

// CalculatePrizes turns a selection into the ordered winner records for a
// draw. Tiers are walked in their configured order so the output list is
// stable. Percentage tiers split their share of the draw's base pool evenly
// across co-winners; rounding happens once, after the split.
func CalculatePrizes(category *models.LotteryCategory, basePrizePool float64, sel Selection) []models.PrizeTierWinner {
	winners := make([]models.PrizeTierWinner, 0)
	for _, tier := range category.PrizeTiers {
		tierWinners := sel.ByTier[tier.TierName]
		if len(tierWinners) == 0 {
			continue
		}

		var gross float64
		var isFixed bool
		switch {
		case tier.FixedPrizeAmount != nil:
			gross = round2(*tier.FixedPrizeAmount)
			isFixed = true
		case tier.PercentageOfPrizePool != nil:
			tierTotal := *tier.PercentageOfPrizePool / 100 * basePrizePool
			gross = round2(tierTotal / float64(len(tierWinners)))
		default:
			// Unreachable given category validation; skip rather than abort
			// the whole resolution.
			slog.Warn("prize tier has no amount configured, skipping",
				"category", category.Name, "tier", tier.TierName)
			continue
		}

		fee := round2(gross * category.WinnerFeePercentage / 100)
		net := round2(gross - fee)
		for _, ticket := range tierWinners {
			winners = append(winners, models.PrizeTierWinner{
				TierName:              tier.TierName,
				WalletAddress:         ticket.WalletAddress,
				TicketID:              ticket.TicketID,
				PrizeAmountCalculated: gross,
				IsFixedPrize:          isFixed,
				FeeAmountCharged:      fee,
				NetPrizePayable:       net,
			})
		}
	}
	return winners
}

// round2 rounds to 2 decimal places, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
