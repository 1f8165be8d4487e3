// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	xlog "github.com/canalview/canalview/internal/log"
)

// CacheWatcher reloads the catalog when another process rewrites the
// shared payload cache file. This keeps replicas behind a load balancer
// in sync without each of them hitting upstream.
type CacheWatcher struct {
	refresher *Refresher
	path      string
}

// NewCacheWatcher watches the payload file at path.
func NewCacheWatcher(r *Refresher, path string) *CacheWatcher {
	return &CacheWatcher{refresher: r, path: path}
}

// Run blocks until ctx is cancelled. The parent directory is watched
// rather than the file itself: atomic renames replace the inode, which
// would silently detach a file-level watch.
func (w *CacheWatcher) Run(ctx context.Context) error {
	logger := xlog.WithComponent("watcher")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch cache dir %s: %w", dir, err)
	}

	logger.Info().
		Str("event", "watcher.started").
		Str("path", w.path).
		Msg("watching payload cache for changes")

	// Debounce timer to avoid double reloads for rename+chmod bursts
	var debounceTimer *time.Timer
	debounceDuration := 500 * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			logger.Info().Str("event", "watcher.stopped").Msg("cache watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				logger.Debug().
					Str("event", "watcher.file_changed").
					Str("op", event.Op.String()).
					Msg("payload cache changed")

				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounceDuration, func() {
					if !w.refresher.ReloadFromCache(ctx) {
						logger.Warn().
							Str("event", "watcher.reload_failed").
							Msg("could not reload payload from cache")
					}
				})
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error().
				Err(err).
				Str("event", "watcher.error").
				Msg("cache watcher error")
		}
	}
}
