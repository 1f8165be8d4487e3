// SPDX-License-Identifier: MIT

package web

import (
	"net/http"

	xlog "github.com/canalview/canalview/internal/log"
	"github.com/canalview/canalview/internal/playlist"
)

// handlePlaylist exports the filtered channel list as M3U, one entry per
// channel using its first stream. External players (VLC, Kodi) consume this.
func (s *Server) handlePlaylist(w http.ResponseWriter, r *http.Request) {
	snap := s.catalog.Current()
	if snap == nil {
		http.Error(w, "catalog not ready", http.StatusServiceUnavailable)
		return
	}

	entries := snap.List(s.filterFromRequest(r))
	items := make([]playlist.Item, 0, len(entries))
	for i, e := range entries {
		group := e.Channel.Country
		if len(e.Channel.Categories) > 0 {
			group = e.Channel.Categories[0]
		}
		items = append(items, playlist.Item{
			Name:    e.Channel.Name,
			TvgID:   e.Channel.ID,
			TvgChNo: i + 1,
			Group:   group,
			URL:     e.Streams[0].URL,
		})
	}

	w.Header().Set("Content-Type", "audio/x-mpegurl")
	w.Header().Set("Content-Disposition", `attachment; filename="canalview.m3u"`)
	if err := playlist.WriteM3U(w, items); err != nil {
		logger := xlog.WithComponentFromContext(r.Context(), "web")
		logger.Error().
			Err(err).
			Str("event", "web.playlist_failed").
			Msg("could not write playlist")
	}
}
