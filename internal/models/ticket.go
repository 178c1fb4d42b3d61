package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ticket is one entry into a draw. Picks is populated only for pick-N
// categories; raffle tickets carry just the wallet address.
type Ticket struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	DrawID        primitive.ObjectID `bson:"drawId" json:"draw_id"`
	CategoryID    primitive.ObjectID `bson:"categoryId" json:"category_id"`
	WalletAddress string             `bson:"walletAddress" json:"wallet_address"`
	Picks         []int              `bson:"picks,omitempty" json:"picks,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"created_at"`
}

// TicketEntry is the slim projection the winner selection strategies consume.
type TicketEntry struct {
	TicketID      string
	WalletAddress string
	Picks         []int
}
