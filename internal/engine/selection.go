// Package engine holds the pure draw-resolution logic: winner selection,
// tiered prize calculation and the rollover computation. Nothing in here
// performs I/O; the services layer supplies data and persists results.
package engine

import (
	"fmt"
	"sort"

	"github.com/bahatiirene/xrpl-lottery-backend/internal/models"
	"github.com/bahatiirene/xrpl-lottery-backend/internal/rng"
)

// Selection is the outcome of running a game strategy over a draw's tickets.
// ByTier maps tier name to the tickets that won it; WinningSelection is set
// only for pick-N games.
type Selection struct {
	WinningSelection []int
	ByTier           map[string][]models.TicketEntry
}

// SelectWinners dispatches on the category's game type. The switch is
// exhaustive over the supported games; an unknown type is a configuration
// error, not a fallback.
func SelectWinners(category *models.LotteryCategory, seed string, tickets []models.TicketEntry) (Selection, error) {
	switch category.GameType {
	case models.GameTypeRaffle:
		return selectRaffleWinners(category, seed, tickets)
	case models.GameTypePickNDigits:
		return selectPickNWinners(category, seed, tickets)
	default:
		return Selection{}, fmt.Errorf("%w: unknown game type %q", rng.ErrInvalidConfig, category.GameType)
	}
}

// selectRaffleWinners draws one winning ticket per configured tier from the
// remaining pool. A winning ticket leaves the pool, so no ticket can win
// twice; the seed is perturbed per pick so successive tiers do not land on
// the same index. Iteration stops once the pool is exhausted.
func selectRaffleWinners(category *models.LotteryCategory, seed string, tickets []models.TicketEntry) (Selection, error) {
	sel := Selection{ByTier: make(map[string][]models.TicketEntry)}
	pool := make([]models.TicketEntry, len(tickets))
	copy(pool, tickets)

	picksSoFar := 0
	for _, tier := range category.PrizeTiers {
		if len(pool) == 0 {
			break
		}
		pickSeed := fmt.Sprintf("%s|%s|%d", seed, tier.TierName, picksSoFar)
		idx, err := rng.WinnerIndex(pickSeed, len(pool))
		if err != nil {
			return Selection{}, fmt.Errorf("raffle pick for tier %s: %w", tier.TierName, err)
		}
		winner := pool[idx]
		pool = append(pool[:idx], pool[idx+1:]...)
		sel.ByTier[tier.TierName] = append(sel.ByTier[tier.TierName], winner)
		picksSoFar++
	}
	return sel, nil
}

// selectPickNWinners derives the winning selection once, then awards each
// ticket to the single highest tier whose match count it satisfies.
func selectPickNWinners(category *models.LotteryCategory, seed string, tickets []models.TicketEntry) (Selection, error) {
	if category.GameConfig == nil {
		return Selection{}, fmt.Errorf("%w: pick_n_digits category %s has no game config", rng.ErrInvalidConfig, category.Name)
	}
	winning, err := rng.WinningPicks(seed, *category.GameConfig)
	if err != nil {
		return Selection{}, fmt.Errorf("derive winning picks: %w", err)
	}
	winningSet := make(map[int]bool, len(winning))
	for _, v := range winning {
		winningSet[v] = true
	}

	// Highest match requirement first, so the first satisfied tier is the
	// best one the ticket qualifies for.
	tiers := make([]models.PrizeTierConfig, len(category.PrizeTiers))
	copy(tiers, category.PrizeTiers)
	sort.SliceStable(tiers, func(i, j int) bool {
		return tiers[i].MatchesRequired > tiers[j].MatchesRequired
	})

	sel := Selection{WinningSelection: winning, ByTier: make(map[string][]models.TicketEntry)}
	for _, ticket := range tickets {
		if len(ticket.Picks) == 0 {
			continue
		}
		matches := countMatches(ticket.Picks, winningSet)
		for _, tier := range tiers {
			if tier.MatchesRequired > 0 && matches >= tier.MatchesRequired {
				sel.ByTier[tier.TierName] = append(sel.ByTier[tier.TierName], ticket)
				break
			}
		}
	}
	return sel, nil
}

// countMatches is order-independent set intersection; duplicate picks on a
// ticket count once.
func countMatches(picks []int, winning map[int]bool) int {
	seen := make(map[int]bool, len(picks))
	matches := 0
	for _, p := range picks {
		if winning[p] && !seen[p] {
			matches++
			seen[p] = true
		}
	}
	return matches
}
