package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DrawStatus represents the lifecycle state of a draw
type DrawStatus string

const (
	DrawStatusPendingOpen DrawStatus = "pending_open"
	DrawStatusOpen        DrawStatus = "open"
	DrawStatusClosed      DrawStatus = "closed"
	DrawStatusCompleted   DrawStatus = "completed"
	DrawStatusCancelled   DrawStatus = "cancelled"
)

// Draw represents one timed occurrence of a category's game.
// Once Status reaches completed the resolution fields (WinnersByTier,
// WinningSelection, RandomnessSeed, ActualCloseTime) are immutable.
type Draw struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CategoryID         primitive.ObjectID `bson:"categoryId" json:"category_id"`
	ScheduledOpenTime  time.Time          `bson:"scheduledOpenTime" json:"scheduled_open_time"`
	ScheduledCloseTime time.Time          `bson:"scheduledCloseTime" json:"scheduled_close_time"`
	ActualOpenTime     *time.Time         `bson:"actualOpenTime,omitempty" json:"actual_open_time,omitempty"`
	ActualCloseTime    *time.Time         `bson:"actualCloseTime,omitempty" json:"actual_close_time,omitempty"`
	Status             DrawStatus         `bson:"status" json:"status"`
	// BasePrizePool is snapshotted at creation as category base pool plus the
	// rollover accumulated at that instant. Never recomputed afterwards.
	BasePrizePool    float64           `bson:"basePrizePool" json:"base_prize_pool"`
	Participants     []string          `bson:"participants" json:"participants"`
	WinningSelection []int             `bson:"winningSelection,omitempty" json:"winning_selection,omitempty"`
	WinnersByTier    []PrizeTierWinner `bson:"winnersByTier" json:"winners_by_tier"`
	RandomnessSeed   string            `bson:"randomnessSeed,omitempty" json:"randomness_seed,omitempty"`
	CreatedAt        time.Time         `bson:"createdAt" json:"created_at"`
	UpdatedAt        time.Time         `bson:"updatedAt" json:"updated_at"`
}

// IsResolved reports whether the draw already carries a final result.
// An empty WinnersByTier on a completed draw means resolved-with-no-winners.
func (d *Draw) IsResolved() bool {
	return d.Status == DrawStatusCompleted
}

// CloseDue reports whether the scheduled close time has passed at now.
func (d *Draw) CloseDue(now time.Time) bool {
	return !now.Before(d.ScheduledCloseTime)
}
