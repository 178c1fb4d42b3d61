package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RolloverEvent records one application of the rollover ledger after a draw
// resolved, so pool movements stay auditable even though the category only
// keeps the running total.
type RolloverEvent struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CategoryID         primitive.ObjectID `bson:"categoryId" json:"category_id"`
	DrawID             primitive.ObjectID `bson:"drawId" json:"draw_id"`
	JackpotWon         bool               `bson:"jackpotWon" json:"jackpot_won"`
	PreviousAmount     float64            `bson:"previousAmount" json:"previous_amount"`
	NewAmount          float64            `bson:"newAmount" json:"new_amount"`
	ContributingTiers  []string           `bson:"contributingTiers,omitempty" json:"contributing_tiers,omitempty"`
	CreatedAt          time.Time          `bson:"createdAt" json:"created_at"`
}
