package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bahatiirene/xrpl-lottery-backend/internal/models"
	"github.com/bahatiirene/xrpl-lottery-backend/internal/repositories/memory"
	"github.com/bahatiirene/xrpl-lottery-backend/internal/services"
)

// fakeRandomness hands out ledger hashes and counts how often it was asked.
// Each call returns a different hash so a test can prove only one resolution
// actually consumed randomness.
type fakeRandomness struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (f *fakeRandomness) LatestLedgerHash(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.calls++
	return fmt.Sprintf("LEDGERHASH%04d", f.calls), nil
}

func (f *fakeRandomness) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fixture struct {
	categories *memory.CategoryRepository
	draws      *memory.DrawRepository
	tickets    *memory.TicketRepository
	rollovers  *memory.RolloverEventRepository
	randomness *fakeRandomness
	bus        *services.EventBus
	svc        *services.DrawServiceImpl
	now        time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		categories: memory.NewCategoryRepository(),
		draws:      memory.NewDrawRepository(),
		tickets:    memory.NewTicketRepository(),
		rollovers:  memory.NewRolloverEventRepository(),
		randomness: &fakeRandomness{},
		bus:        services.NewEventBus(),
		now:        time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = services.NewDrawService(f.draws, f.categories, f.tickets, f.randomness, f.bus).
		WithClock(func() time.Time { return f.now })
	return f
}

func floatPtr(v float64) *float64 { return &v }

func (f *fixture) createRaffleCategory(t *testing.T) *models.LotteryCategory {
	t.Helper()
	category := &models.LotteryCategory{
		Name:             "Hourly Raffle",
		GameType:         models.GameTypeRaffle,
		DrawIntervalType: models.DrawIntervalHourly,
		TicketPrice:      1,
		BasePrizePool:    100,
		IsActive:         true,
		PrizeTiers: []models.PrizeTierConfig{
			{
				TierName:                     "jackpot",
				PercentageOfPrizePool:        floatPtr(100),
				IsJackpotTier:                true,
				ContributesToRolloverIfUnwon: true,
			},
		},
	}
	require.NoError(t, f.categories.Create(context.Background(), category))
	return category
}

func (f *fixture) createOpenDraw(t *testing.T, category *models.LotteryCategory) *models.Draw {
	t.Helper()
	ctx := context.Background()
	draw, err := f.svc.ScheduleDraw(ctx, category.ID, f.now.Add(-time.Hour), f.now.Add(-time.Minute))
	require.NoError(t, err)
	draw, err = f.svc.OpenDraw(ctx, draw.ID)
	require.NoError(t, err)
	require.Equal(t, models.DrawStatusOpen, draw.Status)
	return draw
}

func (f *fixture) addTickets(t *testing.T, draw *models.Draw, wallets ...string) {
	t.Helper()
	tickets := make([]*models.Ticket, 0, len(wallets))
	for _, w := range wallets {
		tickets = append(tickets, &models.Ticket{
			DrawID:        draw.ID,
			CategoryID:    draw.CategoryID,
			WalletAddress: w,
		})
	}
	require.NoError(t, f.tickets.CreateMany(context.Background(), tickets))
}

func TestScheduleDrawSnapshotsPrizePool(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	category := f.createRaffleCategory(t)
	require.NoError(t, f.categories.UpdateRolloverAmount(ctx, category.ID, 40))

	draw, err := f.svc.ScheduleDraw(ctx, category.ID, f.now, f.now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 140.0, draw.BasePrizePool)
	assert.Equal(t, models.DrawStatusPendingOpen, draw.Status)

	// A later rollover change must not touch the snapshot.
	require.NoError(t, f.categories.UpdateRolloverAmount(ctx, category.ID, 999))
	stored, err := f.svc.GetDrawByID(ctx, draw.ID)
	require.NoError(t, err)
	assert.Equal(t, 140.0, stored.BasePrizePool)
}

func TestOpenDrawBeforeScheduledTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	category := f.createRaffleCategory(t)

	draw, err := f.svc.ScheduleDraw(ctx, category.ID, f.now.Add(time.Hour), f.now.Add(2*time.Hour))
	require.NoError(t, err)

	_, err = f.svc.OpenDraw(ctx, draw.ID)
	assert.ErrorIs(t, err, services.ErrInvalidTransition)
}

func TestOpenDrawIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	category := f.createRaffleCategory(t)
	draw := f.createOpenDraw(t, category)

	again, err := f.svc.OpenDraw(ctx, draw.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DrawStatusOpen, again.Status)
}

func TestCloseDrawResolvesWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	category := f.createRaffleCategory(t)
	draw := f.createOpenDraw(t, category)
	f.addTickets(t, draw, "rWalletAAA111", "rWalletBBB222", "rWalletCCC333")

	resolved, err := f.svc.CloseDraw(ctx, draw.ID)
	require.NoError(t, err)

	assert.Equal(t, models.DrawStatusCompleted, resolved.Status)
	assert.NotEmpty(t, resolved.RandomnessSeed)
	assert.Len(t, resolved.Participants, 3)
	require.Len(t, resolved.WinnersByTier, 1)
	winner := resolved.WinnersByTier[0]
	assert.Equal(t, "jackpot", winner.TierName)
	assert.Contains(t, resolved.Participants, winner.WalletAddress)
	assert.Equal(t, 100.0, winner.PrizeAmountCalculated)
	assert.NotNil(t, resolved.ActualCloseTime)
}

func TestCloseDrawIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	category := f.createRaffleCategory(t)
	draw := f.createOpenDraw(t, category)
	f.addTickets(t, draw, "rWalletAAA111", "rWalletBBB222")

	first, err := f.svc.CloseDraw(ctx, draw.ID)
	require.NoError(t, err)
	second, err := f.svc.CloseDraw(ctx, draw.ID)
	require.NoError(t, err)

	assert.Equal(t, first.RandomnessSeed, second.RandomnessSeed)
	assert.Equal(t, first.WinnersByTier, second.WinnersByTier)
	assert.Equal(t, 1, f.randomness.callCount())
}

func TestCloseDrawConcurrentCallersAgree(t *testing.T) {
	f := newFixture(t)
	category := f.createRaffleCategory(t)
	draw := f.createOpenDraw(t, category)
	f.addTickets(t, draw, "rWalletAAA111", "rWalletBBB222", "rWalletCCC333", "rWalletDDD444")

	const callers = 8
	results := make([]*models.Draw, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.svc.CloseDraw(context.Background(), draw.ID)
		}(i)
	}
	wg.Wait()

	// The fake hands out a distinct hash per call, so identical seeds across
	// all callers proves exactly one resolution was persisted.
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, models.DrawStatusCompleted, results[i].Status)
		assert.Equal(t, results[0].RandomnessSeed, results[i].RandomnessSeed)
		assert.Equal(t, results[0].WinnersByTier, results[i].WinnersByTier)
	}
}

func TestCloseDrawEmptySkipsRandomness(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	category := f.createRaffleCategory(t)
	draw := f.createOpenDraw(t, category)

	resolved, err := f.svc.CloseDraw(ctx, draw.ID)
	require.NoError(t, err)

	assert.Equal(t, models.DrawStatusCompleted, resolved.Status)
	assert.Empty(t, resolved.WinnersByTier)
	assert.Empty(t, resolved.Participants)
	assert.Empty(t, resolved.RandomnessSeed)
	assert.Equal(t, 0, f.randomness.callCount())
}

func TestCloseDrawRandomnessUnavailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	category := f.createRaffleCategory(t)
	draw := f.createOpenDraw(t, category)
	f.addTickets(t, draw, "rWalletAAA111")
	f.randomness.err = errors.New("xrpl node unreachable")

	_, err := f.svc.CloseDraw(ctx, draw.ID)
	assert.ErrorIs(t, err, services.ErrUnavailable)

	// The draw stays open so a retry can pick it up.
	stored, err := f.svc.GetDrawByID(ctx, draw.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DrawStatusOpen, stored.Status)

	f.randomness.err = nil
	resolved, err := f.svc.CloseDraw(ctx, draw.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DrawStatusCompleted, resolved.Status)
}

func TestCloseDrawBeforeCloseTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	category := f.createRaffleCategory(t)

	draw, err := f.svc.ScheduleDraw(ctx, category.ID, f.now.Add(time.Hour), f.now.Add(2*time.Hour))
	require.NoError(t, err)

	_, err = f.svc.CloseDraw(ctx, draw.ID)
	assert.ErrorIs(t, err, services.ErrInvalidTransition)
}

func TestCloseDrawCancelled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	category := f.createRaffleCategory(t)
	draw := f.createOpenDraw(t, category)
	require.NoError(t, f.draws.Cancel(ctx, draw.ID))

	_, err := f.svc.CloseDraw(ctx, draw.ID)
	assert.ErrorIs(t, err, services.ErrInvalidTransition)
}

func TestRolloverLedgerAccumulatesWhenUnwon(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	category := f.createRaffleCategory(t)
	rollover := services.NewRolloverService(f.categories, f.rollovers)
	f.bus.SubscribeDrawResolved(rollover.HandleDrawResolved)

	// No tickets: the jackpot tier goes unwon and its full pool allocation
	// rolls over.
	draw := f.createOpenDraw(t, category)
	_, err := f.svc.CloseDraw(ctx, draw.ID)
	require.NoError(t, err)
	f.bus.Wait()

	updated, err := f.categories.FindByID(ctx, category.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, updated.CurrentRolloverAmount)

	events, err := f.rollovers.FindByCategory(ctx, category.ID, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.False(t, events[0].JackpotWon)
	assert.Equal(t, 0.0, events[0].PreviousAmount)
	assert.Equal(t, 100.0, events[0].NewAmount)
	assert.Equal(t, []string{"jackpot"}, events[0].ContributingTiers)
}

func TestRolloverLedgerResetsOnJackpotWin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	category := f.createRaffleCategory(t)
	require.NoError(t, f.categories.UpdateRolloverAmount(ctx, category.ID, 250))
	rollover := services.NewRolloverService(f.categories, f.rollovers)
	f.bus.SubscribeDrawResolved(rollover.HandleDrawResolved)

	draw := f.createOpenDraw(t, category)
	f.addTickets(t, draw, "rWalletAAA111")
	_, err := f.svc.CloseDraw(ctx, draw.ID)
	require.NoError(t, err)
	f.bus.Wait()

	updated, err := f.categories.FindByID(ctx, category.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, updated.CurrentRolloverAmount)

	events, err := f.rollovers.FindByCategory(ctx, category.ID, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].JackpotWon)
}

func TestFollowUpDrawIncludesFreshRollover(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	category := f.createRaffleCategory(t)
	rollover := services.NewRolloverService(f.categories, f.rollovers)
	// Registration order matters: the ledger must run before the follow-up
	// draw snapshots its pool.
	f.bus.SubscribeDrawResolved(rollover.HandleDrawResolved)
	f.bus.SubscribeDrawResolved(f.svc.ScheduleFollowUpDraw)

	draw := f.createOpenDraw(t, category)
	_, err := f.svc.CloseDraw(ctx, draw.ID)
	require.NoError(t, err)
	f.bus.Wait()

	draws, err := f.draws.FindByCategory(ctx, category.ID, 10)
	require.NoError(t, err)
	require.Len(t, draws, 2)

	var next *models.Draw
	for _, d := range draws {
		if d.Status == models.DrawStatusPendingOpen {
			next = d
		}
	}
	require.NotNil(t, next)
	assert.Equal(t, draw.ScheduledCloseTime, next.ScheduledOpenTime)
	assert.Equal(t, draw.ScheduledCloseTime.Add(time.Hour), next.ScheduledCloseTime)
	// Base pool 100 plus the 100 that just rolled over.
	assert.Equal(t, 200.0, next.BasePrizePool)
}

func TestNoFollowUpDrawForManualCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	category := f.createRaffleCategory(t)
	category.DrawIntervalType = models.DrawIntervalManual
	require.NoError(t, f.categories.Update(ctx, category))
	f.bus.SubscribeDrawResolved(f.svc.ScheduleFollowUpDraw)

	draw := f.createOpenDraw(t, category)
	_, err := f.svc.CloseDraw(ctx, draw.ID)
	require.NoError(t, err)
	f.bus.Wait()

	draws, err := f.draws.FindByCategory(ctx, category.ID, 10)
	require.NoError(t, err)
	assert.Len(t, draws, 1)
}

func TestProcessDueDraws(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	category := f.createRaffleCategory(t)

	// One draw past its close time, one past its open time, one not due yet.
	overdue := f.createOpenDraw(t, category)
	dueToOpen, err := f.svc.ScheduleDraw(ctx, category.ID, f.now.Add(-time.Minute), f.now.Add(time.Hour))
	require.NoError(t, err)
	notDue, err := f.svc.ScheduleDraw(ctx, category.ID, f.now.Add(time.Hour), f.now.Add(2*time.Hour))
	require.NoError(t, err)

	opened, closed, err := f.svc.ProcessDueDraws(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, opened)
	assert.Equal(t, 1, closed)

	stored, err := f.svc.GetDrawByID(ctx, overdue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DrawStatusCompleted, stored.Status)

	stored, err = f.svc.GetDrawByID(ctx, dueToOpen.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DrawStatusOpen, stored.Status)

	stored, err = f.svc.GetDrawByID(ctx, notDue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DrawStatusPendingOpen, stored.Status)
}

func TestGetDrawByIDNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.GetDrawByID(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, services.ErrNotFound)
}
