// SPDX-License-Identifier: MIT

package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/canalview/canalview/internal/catalog"
	"github.com/canalview/canalview/internal/history"
	"github.com/canalview/canalview/internal/jobs"
	xlog "github.com/canalview/canalview/internal/log"
)

// filterFromRequest maps query parameters onto a catalog filter. The
// country default only applies when the parameter is absent; an explicit
// empty value means "all countries".
func (s *Server) filterFromRequest(r *http.Request) catalog.Filter {
	q := r.URL.Query()
	country := s.cfg.DefaultCountry
	if q.Has("country") {
		country = q.Get("country")
	}
	return catalog.Filter{
		Query:    q.Get("q"),
		Country:  country,
		Category: q.Get("category"),
	}
}

type indexData struct {
	Filter     catalog.Filter
	Entries    []catalog.Entry
	Countries  []string
	Categories []string
	Status     jobs.Status
	NotReady   bool
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := indexData{
		Filter: s.filterFromRequest(r),
		Status: s.refresher.Status(),
	}

	snap := s.catalog.Current()
	if snap == nil {
		data.NotReady = true
		s.render(w, r, http.StatusOK, "index.html", data)
		return
	}

	data.Entries = snap.List(data.Filter)
	data.Countries = snap.Countries()
	data.Categories = snap.Categories()
	s.render(w, r, http.StatusOK, "index.html", data)
}

type channelData struct {
	Channel catalog.Channel
	Streams []catalog.Stream
}

func (s *Server) handleChannel(w http.ResponseWriter, r *http.Request) {
	snap := s.catalog.Current()
	if snap == nil {
		http.Error(w, "catalog not ready", http.StatusServiceUnavailable)
		return
	}

	id := chi.URLParam(r, "id")
	ch, ok := snap.Channel(id)
	if !ok {
		http.NotFound(w, r)
		return
	}

	s.render(w, r, http.StatusOK, "channel.html", channelData{
		Channel: ch,
		Streams: snap.Streams(id),
	})
}

type watchData struct {
	Channel catalog.Channel
	Stream  catalog.Stream
	Index   int
	Total   int
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	snap := s.catalog.Current()
	if snap == nil {
		http.Error(w, "catalog not ready", http.StatusServiceUnavailable)
		return
	}

	id := chi.URLParam(r, "id")
	ch, ok := snap.Channel(id)
	if !ok {
		http.NotFound(w, r)
		return
	}

	streams := snap.Streams(id)
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 || index >= len(streams) {
		http.Error(w, "stream index out of range", http.StatusNotFound)
		return
	}

	s.recordWatch(r, ch, index)

	s.render(w, r, http.StatusOK, "watch.html", watchData{
		Channel: ch,
		Stream:  streams[index],
		Index:   index,
		Total:   len(streams),
	})
}

// recordWatch stores the watch event, best effort. A broken history
// database must never block playback.
func (s *Server) recordWatch(r *http.Request, ch catalog.Channel, index int) {
	if s.history == nil {
		return
	}
	err := s.history.Record(r.Context(), history.Entry{
		ChannelID:   ch.ID,
		ChannelName: ch.Name,
		StreamIndex: index,
	})
	if err != nil {
		logger := xlog.WithComponentFromContext(r.Context(), "web")
		logger.Warn().
			Err(err).
			Str("event", "web.history_write_failed").
			Str(xlog.FieldChannelID, ch.ID).
			Msg("could not record watch event")
	}
}

type historyData struct {
	Enabled bool
	Entries []history.Entry
}

func (s *Server) handleHistoryPage(w http.ResponseWriter, r *http.Request) {
	data := historyData{Enabled: s.history != nil}
	if s.history != nil {
		entries, err := s.history.Recent(r.Context(), 50)
		if err != nil {
			logger := xlog.WithComponentFromContext(r.Context(), "web")
			logger.Error().
				Err(err).
				Str("event", "web.history_read_failed").
				Msg("could not read watch history")
			http.Error(w, "history unavailable", http.StatusInternalServerError)
			return
		}
		data.Entries = entries
	}
	s.render(w, r, http.StatusOK, "history.html", data)
}

// handleRefresh forces a catalog refresh and sends the browser back to
// the index. Failures surface as 503 so the UI shows something actionable.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if _, err := s.refresher.ForceRefresh(r.Context()); err != nil {
		http.Error(w, "refresh failed: upstream unavailable", http.StatusServiceUnavailable)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
