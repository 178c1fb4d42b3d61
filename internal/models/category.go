package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GameType identifies how winners are determined for a category.
type GameType string

const (
	GameTypeRaffle      GameType = "raffle"
	GameTypePickNDigits GameType = "pick_n_digits"
)

// DrawIntervalType controls how draws recur for a category.
type DrawIntervalType string

const (
	DrawIntervalMinutes DrawIntervalType = "minutes"
	DrawIntervalHourly  DrawIntervalType = "hourly"
	DrawIntervalDaily   DrawIntervalType = "daily"
	DrawIntervalWeekly  DrawIntervalType = "weekly"
	DrawIntervalManual  DrawIntervalType = "manual"
)

// GameConfig holds the pick-N parameters. Required when GameType is pick_n_digits.
type GameConfig struct {
	NumPicks        int  `bson:"numPicks" json:"num_picks"`
	MinDigit        int  `bson:"minDigit" json:"min_digit"`
	MaxDigit        int  `bson:"maxDigit" json:"max_digit"`
	AllowDuplicates bool `bson:"allowDuplicates" json:"allow_duplicates"`
}

// PrizeTierConfig defines one prize bracket of a category. Exactly one of
// FixedPrizeAmount or PercentageOfPrizePool must be set; this is validated
// when the category is created or updated.
type PrizeTierConfig struct {
	TierName                    string   `bson:"tierName" json:"tier_name"`
	MatchesRequired             int      `bson:"matchesRequired" json:"matches_required"`
	FixedPrizeAmount            *float64 `bson:"fixedPrizeAmount,omitempty" json:"fixed_prize_amount,omitempty"`
	PercentageOfPrizePool       *float64 `bson:"percentageOfPrizePool,omitempty" json:"percentage_of_prize_pool,omitempty"`
	IsJackpotTier               bool     `bson:"isJackpotTier" json:"is_jackpot_tier"`
	ContributesToRolloverIfUnwon bool    `bson:"contributesToRolloverIfUnwon" json:"contributes_to_rollover_if_unwon"`
}

// LotteryCategory is the configuration for one lottery game. The draw engine
// consumes it read-only; only the rollover ledger mutates CurrentRolloverAmount.
type LotteryCategory struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name                  string             `bson:"name" json:"name"`
	Description           string             `bson:"description,omitempty" json:"description,omitempty"`
	GameType              GameType           `bson:"gameType" json:"game_type"`
	GameConfig            *GameConfig        `bson:"gameConfig,omitempty" json:"game_config,omitempty"`
	DrawIntervalType      DrawIntervalType   `bson:"drawIntervalType" json:"draw_interval_type"`
	DrawIntervalValue     int                `bson:"drawIntervalValue,omitempty" json:"draw_interval_value,omitempty"`
	TicketPrice           float64            `bson:"ticketPrice" json:"ticket_price"`
	BasePrizePool         float64            `bson:"basePrizePool" json:"base_prize_pool"`
	CurrentRolloverAmount float64            `bson:"currentRolloverAmount" json:"current_rollover_amount"`
	WinnerFeePercentage   float64            `bson:"winnerFeePercentage" json:"winner_fee_percentage"`
	PrizeTiers            []PrizeTierConfig  `bson:"prizeTiers" json:"prize_tiers"`
	IsActive              bool               `bson:"isActive" json:"is_active"`
	CreatedAt             time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt             time.Time          `bson:"updatedAt" json:"updated_at"`
}

// DrawInterval returns the spacing between consecutive draws, or zero for
// manual categories.
func (c *LotteryCategory) DrawInterval() time.Duration {
	value := c.DrawIntervalValue
	if value <= 0 {
		value = 1
	}
	switch c.DrawIntervalType {
	case DrawIntervalMinutes:
		return time.Duration(value) * time.Minute
	case DrawIntervalHourly:
		return time.Duration(value) * time.Hour
	case DrawIntervalDaily:
		return time.Duration(value) * 24 * time.Hour
	case DrawIntervalWeekly:
		return time.Duration(value) * 7 * 24 * time.Hour
	default:
		return 0
	}
}

// IsRecurring reports whether the scheduler should create a follow-up draw
// after one completes.
func (c *LotteryCategory) IsRecurring() bool {
	return c.DrawIntervalType != DrawIntervalManual && c.DrawIntervalType != ""
}
