package services

import (
	"context"
	"sync"

	"golang.org/x/exp/slog"

	"github.com/bahatiirene/xrpl-lottery-backend/internal/models"
)

// DrawResolvedHandler consumes a DrawResolved event after the draw has been
// committed. Handlers are best-effort: a failure is logged, never propagated
// back into the resolution.
type DrawResolvedHandler func(ctx context.Context, event models.DrawResolvedEvent) error

// EventBus is a small in-process pub/sub for draw resolution events. It
// decouples the must-be-correct commit path from best-effort follow-up work
// (rollover ledger, follow-up draw scheduling).
type EventBus struct {
	mu       sync.RWMutex
	handlers []DrawResolvedHandler
	wg       sync.WaitGroup
}

// NewEventBus creates an empty event bus
func NewEventBus() *EventBus {
	return &EventBus{}
}

// SubscribeDrawResolved registers a handler for future DrawResolved events.
// Handlers run in registration order, so the rollover ledger can be
// guaranteed to run before follow-up draw scheduling snapshots the pool.
func (b *EventBus) SubscribeDrawResolved(handler DrawResolvedHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
}

// PublishDrawResolved delivers the event to all subscribers sequentially on
// a single background goroutine. The context is detached from the request:
// follow-up work must not die with the HTTP request that closed the draw.
func (b *EventBus) PublishDrawResolved(event models.DrawResolvedEvent) {
	b.mu.RLock()
	handlers := make([]DrawResolvedHandler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for _, handler := range handlers {
			if err := handler(context.Background(), event); err != nil {
				slog.Error("draw resolved subscriber failed",
					"error", err, "drawId", event.Draw.ID.Hex())
			}
		}
	}()
}

// Wait blocks until all in-flight deliveries finish. Used by tests and
// graceful shutdown.
func (b *EventBus) Wait() {
	b.wg.Wait()
}
