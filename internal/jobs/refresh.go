// SPDX-License-Identifier: MIT

// Package jobs drives the catalog refresh cycle: upstream fetch, durable
// cache, snapshot publication.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/canalview/canalview/internal/cache"
	"github.com/canalview/canalview/internal/catalog"
	"github.com/canalview/canalview/internal/iptvorg"
	xlog "github.com/canalview/canalview/internal/log"
	"github.com/canalview/canalview/internal/metrics"
)

// Status represents the current state of the refresh job.
type Status struct {
	LastRun  time.Time `json:"last_run"`
	Channels int       `json:"channels"`
	Streams  int       `json:"streams"`
	Stale    bool      `json:"stale,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Fetcher retrieves the merged upstream payload.
type Fetcher interface {
	Fetch(ctx context.Context) (iptvorg.Payload, error)
}

// Refresher coordinates cache, upstream and catalog store. Concurrent
// refreshes are coalesced into a single flight.
type Refresher struct {
	fetcher Fetcher
	store   cache.Store
	catalog *catalog.Store
	ttl     time.Duration

	group singleflight.Group

	mu     sync.RWMutex
	status Status
}

// NewRefresher wires the refresh cycle.
func NewRefresher(fetcher Fetcher, store cache.Store, cat *catalog.Store, ttl time.Duration) *Refresher {
	return &Refresher{
		fetcher: fetcher,
		store:   store,
		catalog: cat,
		ttl:     ttl,
	}
}

// Status returns a copy of the current job status.
func (r *Refresher) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// LastRun returns the last publish time and last error, for health checks.
func (r *Refresher) LastRun() (time.Time, string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status.LastRun, r.status.Error
}

// Refresh ensures the catalog reflects a payload no older than the TTL.
// A fresh cache short-circuits the upstream fetch; a failed fetch falls
// back to any cached payload, however old. Only when both upstream and
// cache are unusable does Refresh return an error.
func (r *Refresher) Refresh(ctx context.Context) (Status, error) {
	return r.run(ctx, false)
}

// ForceRefresh always fetches from upstream, ignoring cache freshness.
// There is no stale fallback: the caller asked for new data.
func (r *Refresher) ForceRefresh(ctx context.Context) (Status, error) {
	return r.run(ctx, true)
}

func (r *Refresher) run(ctx context.Context, force bool) (Status, error) {
	key := "refresh"
	if force {
		key = "refresh-force"
	}
	v, err, _ := r.group.Do(key, func() (any, error) {
		return r.refresh(ctx, force)
	})
	if err != nil {
		return Status{}, err
	}
	return v.(Status), nil
}

func (r *Refresher) refresh(ctx context.Context, force bool) (Status, error) {
	logger := xlog.WithComponentFromContext(ctx, "jobs")
	start := time.Now()
	defer func() {
		metrics.ObserveRefreshDuration(time.Since(start).Seconds())
	}()

	logger.Info().Str("event", "refresh.start").Bool("force", force).Msg("starting refresh")

	if !force {
		if st, ok := r.publishFromCache(ctx, logger, true); ok {
			metrics.IncRefresh("fresh_cache")
			return st, nil
		}
	}

	fetchStart := time.Now()
	payload, err := r.fetcher.Fetch(ctx)
	if err != nil {
		metrics.ObserveUpstreamRequest("error", time.Since(fetchStart).Seconds())
		metrics.IncRefreshFailure("fetch")
		logger.Warn().Err(err).Str("event", "refresh.fetch_failed").Msg("upstream fetch failed")

		if !force {
			if st, ok := r.publishFromCache(ctx, logger, false); ok {
				metrics.IncRefresh("stale_fallback")
				st.Error = err.Error()
				st.Stale = true
				r.setStatus(st)
				return st, nil
			}
		}

		metrics.IncRefresh("failure")
		r.recordError(err)
		return Status{}, fmt.Errorf("refresh: %w", err)
	}
	metrics.ObserveUpstreamRequest("success", time.Since(fetchStart).Seconds())

	data, err := json.Marshal(payload)
	if err != nil {
		metrics.IncRefreshFailure("decode")
		metrics.IncRefresh("failure")
		r.recordError(err)
		return Status{}, fmt.Errorf("refresh: marshal payload: %w", err)
	}
	if err := r.store.Save(ctx, data); err != nil {
		// The snapshot is still good; losing the cache write only costs the
		// next cold start a fetch.
		metrics.IncRefreshFailure("persist")
		logger.Warn().Err(err).Str("event", "refresh.persist_failed").Msg("could not persist payload cache")
	}

	st := r.publish(payload, false, "")
	metrics.IncRefresh("upstream")
	logger.Info().
		Str("event", "refresh.success").
		Int("channels", st.Channels).
		Int("streams", st.Streams).
		Msg("refresh completed")
	return st, nil
}

// publishFromCache loads the cached payload and publishes it. With
// requireFresh set, payloads older than the TTL are refused.
func (r *Refresher) publishFromCache(ctx context.Context, logger zerolog.Logger, requireFresh bool) (Status, bool) {
	data, savedAt, err := r.store.Load(ctx)
	if err != nil {
		if err != cache.ErrNoPayload {
			metrics.IncCacheRead("error")
			logger.Warn().Err(err).Str("event", "refresh.cache_read_failed").Msg("cache read failed")
		} else {
			metrics.IncCacheRead("miss")
		}
		return Status{}, false
	}

	fresh := cache.Fresh(savedAt, r.ttl)
	if requireFresh && !fresh {
		metrics.IncCacheRead("stale")
		return Status{}, false
	}

	var payload iptvorg.Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		metrics.IncCacheRead("error")
		logger.Warn().Err(err).Str("event", "refresh.cache_decode_failed").Msg("cached payload is corrupt")
		return Status{}, false
	}

	if fresh {
		metrics.IncCacheRead("fresh")
	} else {
		metrics.IncCacheRead("stale")
	}

	st := r.publish(payload, !fresh, "")
	logger.Info().
		Str("event", "refresh.from_cache").
		Bool("fresh", fresh).
		Int("channels", st.Channels).
		Msg("catalog loaded from cache")
	return st, true
}

// ReloadFromCache republishes whatever payload the cache currently holds.
// Used by the cache watcher when another replica rewrites the shared file.
func (r *Refresher) ReloadFromCache(ctx context.Context) bool {
	logger := xlog.WithComponentFromContext(ctx, "jobs")
	_, ok := r.publishFromCache(ctx, logger, false)
	return ok
}

func (r *Refresher) publish(payload iptvorg.Payload, stale bool, lastErr string) Status {
	snap := catalog.Build(payload)
	r.catalog.Publish(snap)
	metrics.RecordCatalog(snap.Len(), snap.StreamCount(), float64(snap.BuiltAt().Unix()))

	st := Status{
		LastRun:  snap.BuiltAt(),
		Channels: snap.Len(),
		Streams:  snap.StreamCount(),
		Stale:    stale,
		Error:    lastErr,
	}
	r.setStatus(st)
	return st
}

func (r *Refresher) recordError(err error) {
	r.mu.Lock()
	r.status.Error = err.Error()
	r.mu.Unlock()
}

func (r *Refresher) setStatus(st Status) {
	r.mu.Lock()
	r.status = st
	r.mu.Unlock()
}
