// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canalview/canalview/internal/cache"
	"github.com/canalview/canalview/internal/catalog"
	"github.com/canalview/canalview/internal/iptvorg"
)

func TestCacheWatcherReloadsOnWrite(t *testing.T) {
	store, err := cache.NewFileStore(t.TempDir(), "payload.json")
	require.NoError(t, err)

	cat := catalog.NewStore()
	r := NewRefresher(nil, store, cat, 30*time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := NewCacheWatcher(r, store.Path())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()

	// Give the watcher time to register before the write happens.
	time.Sleep(100 * time.Millisecond)

	data, err := json.Marshal(iptvorg.Payload{Channels: testChannels, Streams: testStreams})
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, data))

	assert.Eventually(t, cat.Ready, 5*time.Second, 50*time.Millisecond,
		"watcher should publish the payload written by another process")

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on context cancel")
	}
}
