// Package scheduler drives the draw lifecycle on a timer: pending draws are
// opened and open draws are closed as their scheduled times pass.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/exp/slog"

	"github.com/bahatiirene/xrpl-lottery-backend/internal/services"
)

const tickTimeout = 2 * time.Minute

// Scheduler runs ProcessDueDraws on a cron spec.
type Scheduler struct {
	cron        *cron.Cron
	drawService services.DrawService
	spec        string
}

// New creates a scheduler with a seconds-resolution cron spec, e.g.
// "*/15 * * * * *" for every fifteen seconds.
func New(drawService services.DrawService, spec string) *Scheduler {
	return &Scheduler{
		cron:        cron.New(cron.WithSeconds()),
		drawService: drawService,
		spec:        spec,
	}
}

// Start registers the tick job and begins the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.tick); err != nil {
		return err
	}
	s.cron.Start()
	slog.Info("Draw scheduler started", "spec", s.spec)
	return nil
}

// Stop halts the cron loop and waits for a running tick to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	slog.Info("Draw scheduler stopped")
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
	defer cancel()

	opened, closed, err := s.drawService.ProcessDueDraws(ctx)
	if err != nil {
		slog.Error("Scheduler tick failed", "error", err)
		return
	}
	if opened > 0 || closed > 0 {
		slog.Info("Scheduler tick processed draws", "opened", opened, "closed", closed)
	}
}
