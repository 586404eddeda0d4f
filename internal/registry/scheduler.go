package registry

import (
	"context"
	"time"

	"zipduck-backend/internal/shared/telemetry"
)

// Scheduler drives the collector and sweeper on fixed intervals until its
// context is cancelled. A zero or negative interval disables that job.
type Scheduler struct {
	Collector    *Collector
	Sweeper      *Sweeper
	CollectEvery time.Duration
	SweepEvery   time.Duration
}

// Run blocks until ctx is done. Each job also runs once at startup so a
// fresh deployment has data before the first tick.
func (s *Scheduler) Run(ctx context.Context) {
	if s.Collector != nil && s.CollectEvery > 0 {
		go s.loop(ctx, s.CollectEvery, s.collectOnce)
	}
	if s.Sweeper != nil && s.SweepEvery > 0 {
		go s.loop(ctx, s.SweepEvery, s.sweepOnce)
	}
	<-ctx.Done()
}

func (s *Scheduler) loop(ctx context.Context, every time.Duration, job func(context.Context)) {
	job(ctx)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job(ctx)
		}
	}
}

func (s *Scheduler) collectOnce(ctx context.Context) {
	if _, err := s.Collector.Collect(ctx, time.Now().UTC()); err != nil {
		telemetry.Error("registry.collect_failed", map[string]any{"error": err.Error()})
	}
}

func (s *Scheduler) sweepOnce(ctx context.Context) {
	// Sweep errors are already logged by the sweeper.
	_, _ = s.Sweeper.Run(ctx, time.Now().UTC())
}
