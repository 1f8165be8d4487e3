// SPDX-License-Identifier: MIT

package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canalview/canalview/internal/cache"
	"github.com/canalview/canalview/internal/catalog"
	"github.com/canalview/canalview/internal/config"
	"github.com/canalview/canalview/internal/health"
	"github.com/canalview/canalview/internal/history"
	"github.com/canalview/canalview/internal/iptvorg"
	"github.com/canalview/canalview/internal/jobs"
)

var (
	testChannels = []iptvorg.Channel{
		{ID: "CanalOnce.mx", Name: "Canal Once", Country: "MX", Categories: []string{"general"}},
		{ID: "AztecaUno.mx", Name: "Azteca Uno", Country: "MX", Categories: []string{"entertainment"}},
		{ID: "TVE.es", Name: "Televisión Española", Country: "ES", Categories: []string{"news"}},
	}
	testStreams = []iptvorg.Stream{
		{Channel: "CanalOnce.mx", URL: "https://example.com/once.m3u8", Quality: "720p"},
		{Channel: "CanalOnce.mx", URL: "https://example.com/once-hd.m3u8", Quality: "1080p"},
		{Channel: "AztecaUno.mx", URL: "https://example.com/azteca.m3u8"},
		{Channel: "TVE.es", URL: "https://example.com/tve.m3u8"},
	}
)

type testEnv struct {
	srv     *Server
	router  http.Handler
	ms      *iptvorg.MockServer
	history *history.Store
}

func newTestEnv(t *testing.T, refresh bool) *testEnv {
	t.Helper()

	ms := iptvorg.NewMockServer(testChannels, testStreams)
	t.Cleanup(ms.Close)

	store, err := cache.NewFileStore(t.TempDir(), "payload.json")
	require.NoError(t, err)

	cat := catalog.NewStore()
	refresher := jobs.NewRefresher(ms.Client(iptvorg.Options{Timeout: 5 * time.Second}), store, cat, 30*time.Minute)

	hist, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = hist.Close() })

	hm := health.NewManager("test")
	hm.RegisterChecker(health.NewCatalogChecker(cat.Ready))

	srv, err := New(config.Defaults(), cat, refresher, hist, hm)
	require.NoError(t, err)

	if refresh {
		_, err := refresher.Refresh(context.Background())
		require.NoError(t, err)
	}

	return &testEnv{srv: srv, router: srv.Router(), ms: ms, history: hist}
}

func (e *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestIndexDefaultsToConfiguredCountry(t *testing.T) {
	e := newTestEnv(t, true)

	rec := e.get(t, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Canal Once")
	assert.Contains(t, body, "Azteca Uno")
	assert.NotContains(t, body, "Televisión Española", "default country filter hides other countries")
}

func TestIndexExplicitEmptyCountryShowsAll(t *testing.T) {
	e := newTestEnv(t, true)

	rec := e.get(t, "/?country=")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Televisión Española")
}

func TestIndexSearchFoldsDiacritics(t *testing.T) {
	e := newTestEnv(t, true)

	rec := e.get(t, "/?country=&q=espanola")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Televisión Española")
	assert.NotContains(t, body, "Canal Once")
}

func TestIndexBeforeFirstRefresh(t *testing.T) {
	e := newTestEnv(t, false)

	rec := e.get(t, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "still loading")
}

func TestChannelPage(t *testing.T) {
	e := newTestEnv(t, true)

	rec := e.get(t, "/channel/CanalOnce.mx")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Canal Once")
	assert.Contains(t, body, "720p")
	assert.Contains(t, body, "1080p")

	rec = e.get(t, "/channel/Nope.xx")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWatchPageRecordsHistory(t *testing.T) {
	e := newTestEnv(t, true)

	rec := e.get(t, "/watch/CanalOnce.mx/1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Stream 2 of 2")

	entries, err := e.history.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "CanalOnce.mx", entries[0].ChannelID)
	assert.Equal(t, 1, entries[0].StreamIndex)
}

func TestWatchIndexOutOfRange(t *testing.T) {
	e := newTestEnv(t, true)

	assert.Equal(t, http.StatusNotFound, e.get(t, "/watch/CanalOnce.mx/9").Code)
	assert.Equal(t, http.StatusNotFound, e.get(t, "/watch/CanalOnce.mx/-1").Code)
	assert.Equal(t, http.StatusNotFound, e.get(t, "/watch/CanalOnce.mx/abc").Code)
}

func TestRefreshRedirects(t *testing.T) {
	e := newTestEnv(t, false)

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/refresh", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestRefreshFailureReturns503(t *testing.T) {
	e := newTestEnv(t, false)
	e.ms.SetFailing(true)

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/refresh", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAPIChannels(t *testing.T) {
	e := newTestEnv(t, true)

	rec := e.get(t, "/api/channels?country=MX")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"count":2`)

	rec = e.get(t, "/api/channels/TVE.es")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Televisión Española")

	rec = e.get(t, "/api/channels/Nope.xx")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPIStatus(t *testing.T) {
	e := newTestEnv(t, true)

	rec := e.get(t, "/api/status")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"ready":true`)
	assert.Contains(t, body, `"channels":3`)
}

func TestPlaylistExport(t *testing.T) {
	e := newTestEnv(t, true)

	rec := e.get(t, "/playlist.m3u?country=")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "#EXTM3U\n"))
	assert.Contains(t, body, `tvg-id="CanalOnce.mx"`)
	assert.Contains(t, body, "https://example.com/once.m3u8")
	assert.NotContains(t, body, "once-hd.m3u8", "only the first stream per channel is exported")
}

func TestProbes(t *testing.T) {
	e := newTestEnv(t, false)

	assert.Equal(t, http.StatusOK, e.get(t, "/healthz").Code)
	assert.Equal(t, http.StatusServiceUnavailable, e.get(t, "/readyz").Code)

	_, err := e.srv.refresher.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, e.get(t, "/readyz").Code)
}

func TestRequestIDHeader(t *testing.T) {
	e := newTestEnv(t, true)

	rec := e.get(t, "/")
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestSecurityHeaders(t *testing.T) {
	e := newTestEnv(t, true)

	rec := e.get(t, "/")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}
