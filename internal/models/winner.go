package models

// PrizeTierWinner records one winning ticket within a resolved draw.
// Immutable once the draw is persisted as completed.
type PrizeTierWinner struct {
	TierName              string  `bson:"tierName" json:"tier_name"`
	WalletAddress         string  `bson:"walletAddress" json:"wallet_address"`
	TicketID              string  `bson:"ticketId" json:"ticket_id"`
	PrizeAmountCalculated float64 `bson:"prizeAmountCalculated" json:"prize_amount_calculated"`
	IsFixedPrize          bool    `bson:"isFixedPrize" json:"is_fixed_prize"`
	FeeAmountCharged      float64 `bson:"feeAmountCharged" json:"fee_amount_charged"`
	NetPrizePayable       float64 `bson:"netPrizePayable" json:"net_prize_payable"`
}

// RecentWinnerInfo is the public, anonymized view of a winner used by the
// winners listing endpoint.
type RecentWinnerInfo struct {
	DrawID            string  `json:"draw_id"`
	CategoryID        string  `json:"category_id"`
	CategoryName      string  `json:"category_name"`
	WalletAnonymized  string  `json:"winning_wallet_address_anonymized"`
	TierName          string  `json:"tier_name"`
	NetPrizePayable   float64 `json:"net_prize_payable"`
	ClosedTime        string  `json:"closed_time"`
}
