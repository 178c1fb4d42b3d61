package engine

import (
	"github.com/bahatiirene/xrpl-lottery-backend/internal/models"
)

// RolloverOutcome is the computed next state of a category's rollover
// accumulator after one resolved draw.
type RolloverOutcome struct {
	JackpotWon        bool
	PreviousAmount    float64
	NewAmount         float64
	ContributingTiers []string
	// Changed is false when the accumulator keeps its value, letting the
	// caller skip the category write entirely.
	Changed bool
}

// ComputeRollover applies the rollover rules to a resolved draw's winners.
// A won jackpot tier resets the accumulator regardless of other unwon
// tiers; otherwise every unwon contributing tier adds its would-be
// allocation. Allocations are computed against the category's own base
// pool, not the draw's snapshot, which already includes prior rollover.
func ComputeRollover(category *models.LotteryCategory, winners []models.PrizeTierWinner) RolloverOutcome {
	outcome := RolloverOutcome{
		PreviousAmount: category.CurrentRolloverAmount,
		NewAmount:      category.CurrentRolloverAmount,
	}

	wonTiers := make(map[string]bool, len(winners))
	for _, w := range winners {
		wonTiers[w.TierName] = true
	}
	for _, tier := range category.PrizeTiers {
		if tier.IsJackpotTier && wonTiers[tier.TierName] {
			outcome.JackpotWon = true
			break
		}
	}

	if outcome.JackpotWon {
		outcome.NewAmount = 0
		outcome.Changed = category.CurrentRolloverAmount != 0
		return outcome
	}

	accumulated := 0.0
	for _, tier := range category.PrizeTiers {
		if !tier.ContributesToRolloverIfUnwon || wonTiers[tier.TierName] {
			continue
		}
		var allocation float64
		switch {
		case tier.FixedPrizeAmount != nil:
			allocation = *tier.FixedPrizeAmount
		case tier.PercentageOfPrizePool != nil:
			allocation = *tier.PercentageOfPrizePool / 100 * category.BasePrizePool
		default:
			continue
		}
		accumulated += allocation
		outcome.ContributingTiers = append(outcome.ContributingTiers, tier.TierName)
	}

	if accumulated > 0 {
		outcome.NewAmount = round2(category.CurrentRolloverAmount + accumulated)
		outcome.Changed = true
	}
	return outcome
}
