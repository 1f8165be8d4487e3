// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canalview/canalview/internal/cache"
	"github.com/canalview/canalview/internal/catalog"
	"github.com/canalview/canalview/internal/iptvorg"
)

var (
	testChannels = []iptvorg.Channel{
		{ID: "CanalOnce.mx", Name: "Canal Once", Country: "MX", Categories: []string{"general"}},
		{ID: "TVE.es", Name: "Televisión Española", Country: "ES", Categories: []string{"news"}},
	}
	testStreams = []iptvorg.Stream{
		{Channel: "CanalOnce.mx", URL: "https://example.com/once.m3u8", Quality: "720p"},
		{Channel: "TVE.es", URL: "https://example.com/tve.m3u8"},
	}
)

func newTestRefresher(t *testing.T, ttl time.Duration) (*Refresher, *iptvorg.MockServer, *catalog.Store) {
	t.Helper()
	ms := iptvorg.NewMockServer(testChannels, testStreams)
	t.Cleanup(ms.Close)

	store, err := cache.NewFileStore(t.TempDir(), "payload.json")
	require.NoError(t, err)

	cat := catalog.NewStore()
	return NewRefresher(ms.Client(iptvorg.Options{Timeout: 5 * time.Second}), store, cat, ttl), ms, cat
}

func TestRefreshPopulatesCatalog(t *testing.T) {
	r, _, cat := newTestRefresher(t, 30*time.Minute)

	st, err := r.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, st.Channels)
	assert.Equal(t, 2, st.Streams)
	assert.False(t, st.Stale)
	assert.Empty(t, st.Error)

	require.True(t, cat.Ready())
	ch, ok := cat.Current().Channel("CanalOnce.mx")
	require.True(t, ok)
	assert.Equal(t, "Canal Once", ch.Name)
}

func TestRefreshFreshCacheSkipsUpstream(t *testing.T) {
	r, ms, _ := newTestRefresher(t, 30*time.Minute)
	ctx := context.Background()

	_, err := r.Refresh(ctx)
	require.NoError(t, err)
	hits := ms.Hits()
	assert.Equal(t, int64(2), hits, "one hit per document")

	st, err := r.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, hits, ms.Hits(), "fresh cache must not touch upstream")
	assert.Equal(t, 2, st.Channels)
}

func TestRefreshStaleFallback(t *testing.T) {
	// TTL zero means the cached payload is always expired.
	r, ms, cat := newTestRefresher(t, 0)
	ctx := context.Background()

	_, err := r.Refresh(ctx)
	require.NoError(t, err)

	ms.SetFailing(true)
	st, err := r.Refresh(ctx)
	require.NoError(t, err, "expired cache still beats no data")
	assert.True(t, st.Stale)
	assert.NotEmpty(t, st.Error)
	assert.Equal(t, 2, st.Channels)
	assert.True(t, cat.Ready())
}

func TestRefreshFailsWithoutCacheOrUpstream(t *testing.T) {
	r, ms, cat := newTestRefresher(t, 30*time.Minute)
	ms.SetFailing(true)

	_, err := r.Refresh(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, iptvorg.ErrUpstream)
	assert.False(t, cat.Ready())

	_, lastErr := r.LastRun()
	assert.NotEmpty(t, lastErr)
}

func TestForceRefreshIgnoresCache(t *testing.T) {
	r, ms, _ := newTestRefresher(t, 30*time.Minute)
	ctx := context.Background()

	_, err := r.Refresh(ctx)
	require.NoError(t, err)

	ms.SetFailing(true)
	_, err = r.ForceRefresh(ctx)
	require.Error(t, err, "force refresh must not fall back to cache")

	// The plain refresh still works off the fresh cache.
	st, err := r.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Channels)
}

func TestRefreshSurvivesCorruptCache(t *testing.T) {
	r, _, cat := newTestRefresher(t, 30*time.Minute)
	ctx := context.Background()

	require.NoError(t, r.store.Save(ctx, []byte("{not json")))

	st, err := r.Refresh(ctx)
	require.NoError(t, err, "corrupt cache falls through to upstream")
	assert.Equal(t, 2, st.Channels)
	assert.True(t, cat.Ready())
}

func TestReloadFromCache(t *testing.T) {
	r, ms, cat := newTestRefresher(t, 30*time.Minute)
	ctx := context.Background()

	assert.False(t, r.ReloadFromCache(ctx), "empty cache")

	_, err := r.Refresh(ctx)
	require.NoError(t, err)

	// Simulate a second replica: new refresher over the same store.
	other := NewRefresher(ms.Client(iptvorg.Options{Timeout: 5 * time.Second}), r.store, catalog.NewStore(), 30*time.Minute)
	assert.True(t, other.ReloadFromCache(ctx))
	assert.True(t, cat.Ready())
}
