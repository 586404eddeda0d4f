package registry

import (
	"context"
	"time"

	"zipduck-backend/internal/offers"
	"zipduck-backend/internal/shared/metrics"
	"zipduck-backend/internal/shared/telemetry"
)

// Sweeper closes offers whose application window has passed. Documents and
// analysis outcomes referencing a closed offer are left untouched.
type Sweeper struct {
	Offers offers.Repo
}

// Run performs one sweep and returns how many offers were deactivated.
func (s *Sweeper) Run(ctx context.Context, today time.Time) (int, error) {
	n, err := s.Offers.DeactivateExpired(ctx, today)
	if err != nil {
		telemetry.Error("registry.sweep_failed", map[string]any{"error": err.Error()})
		return 0, err
	}
	if n > 0 {
		metrics.AddOffersDeactivated(n)
		telemetry.Info("registry.sweep_done", map[string]any{"deactivated": n})
	}
	return n, nil
}
