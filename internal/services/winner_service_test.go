package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bahatiirene/xrpl-lottery-backend/internal/services"
)

func TestAnonymizeWallet(t *testing.T) {
	assert.Equal(t, "rPick...xyz", services.AnonymizeWallet("rPickWallet456xyz"))
	assert.Equal(t, "...", services.AnonymizeWallet("short"))
	assert.Equal(t, "...", services.AnonymizeWallet(""))
}

func TestGetRecentWinners(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	category := f.createRaffleCategory(t)
	svc := services.NewWinnerService(f.draws, f.categories)

	draw := f.createOpenDraw(t, category)
	f.addTickets(t, draw, "rWinnerWalletAAA111", "rOtherWalletBBB222")
	resolved, err := f.svc.CloseDraw(ctx, draw.ID)
	require.NoError(t, err)
	require.Len(t, resolved.WinnersByTier, 1)

	winners, err := svc.GetRecentWinners(ctx, 10)
	require.NoError(t, err)
	require.Len(t, winners, 1)

	w := winners[0]
	assert.Equal(t, draw.ID.Hex(), w.DrawID)
	assert.Equal(t, "Hourly Raffle", w.CategoryName)
	assert.Equal(t, "jackpot", w.TierName)
	assert.NotEmpty(t, w.ClosedTime)

	// Full addresses never leak through the public listing.
	full := resolved.WinnersByTier[0].WalletAddress
	assert.NotEqual(t, full, w.WalletAnonymized)
	assert.Equal(t, services.AnonymizeWallet(full), w.WalletAnonymized)
}

func TestGetRecentWinnersSkipsEmptyDraws(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	category := f.createRaffleCategory(t)
	svc := services.NewWinnerService(f.draws, f.categories)

	draw := f.createOpenDraw(t, category)
	_, err := f.svc.CloseDraw(ctx, draw.ID)
	require.NoError(t, err)

	winners, err := svc.GetRecentWinners(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, winners)
}
