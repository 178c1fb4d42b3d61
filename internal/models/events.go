package models

// DrawResolvedEvent is published after a draw's result has been committed.
// Subscribers (rollover ledger, winner announcements) run after the commit
// and never influence the persisted result.
type DrawResolvedEvent struct {
	Draw     *Draw
	Category *LotteryCategory
}
