// SPDX-License-Identifier: MIT

package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/canalview/canalview/internal/catalog"
	"github.com/canalview/canalview/internal/jobs"
	xlog "github.com/canalview/canalview/internal/log"
	"github.com/canalview/canalview/internal/version"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleAPIChannels(w http.ResponseWriter, r *http.Request) {
	snap := s.catalog.Current()
	if snap == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "catalog not ready")
		return
	}
	entries := snap.List(s.filterFromRequest(r))
	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(entries),
		"channels": entries,
	})
}

func (s *Server) handleAPIChannel(w http.ResponseWriter, r *http.Request) {
	snap := s.catalog.Current()
	if snap == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "catalog not ready")
		return
	}
	id := chi.URLParam(r, "id")
	ch, ok := snap.Channel(id)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "channel not found")
		return
	}
	writeJSON(w, http.StatusOK, catalog.Entry{Channel: ch, Streams: snap.Streams(id)})
}

type statusResponse struct {
	Version       string      `json:"version"`
	UptimeSeconds int64       `json:"uptime_seconds"`
	Ready         bool        `json:"ready"`
	Refresh       jobs.Status `json:"refresh"`
}

func (s *Server) handleAPIStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Version:       version.Version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Ready:         s.catalog.Ready(),
		Refresh:       s.refresher.Status(),
	})
}

func (s *Server) handleAPIRefresh(w http.ResponseWriter, r *http.Request) {
	st, err := s.refresher.ForceRefresh(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleAPIHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSONError(w, http.StatusNotFound, "history disabled")
		return
	}
	entries, err := s.history.Recent(r.Context(), 50)
	if err != nil {
		logger := xlog.WithComponentFromContext(r.Context(), "web")
		logger.Error().
			Err(err).
			Str("event", "web.history_read_failed").
			Msg("could not read watch history")
		writeJSONError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(entries),
		"entries": entries,
	})
}
