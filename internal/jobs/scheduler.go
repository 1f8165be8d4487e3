// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"time"

	xlog "github.com/canalview/canalview/internal/log"
)

// Scheduler re-runs the refresh on a fixed interval so the catalog never
// drifts further than one TTL behind upstream.
type Scheduler struct {
	refresher *Refresher
	interval  time.Duration
}

// NewScheduler creates a scheduler. The interval should match the cache
// TTL; a shorter interval just burns fresh-cache short-circuits.
func NewScheduler(r *Refresher, interval time.Duration) *Scheduler {
	return &Scheduler{refresher: r, interval: interval}
}

// Run blocks until ctx is cancelled, triggering a refresh every interval.
// Refresh errors are logged, not returned: the next tick gets another try.
func (s *Scheduler) Run(ctx context.Context) {
	logger := xlog.WithComponent("scheduler")
	logger.Info().
		Str("event", "scheduler.started").
		Dur("interval", s.interval).
		Msg("refresh scheduler started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Str("event", "scheduler.stopped").Msg("refresh scheduler stopped")
			return
		case <-ticker.C:
			if _, err := s.refresher.Refresh(ctx); err != nil {
				logger.Error().
					Err(err).
					Str("event", "scheduler.refresh_failed").
					Msg("scheduled refresh failed")
			}
		}
	}
}
