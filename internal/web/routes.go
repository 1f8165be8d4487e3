// SPDX-License-Identifier: MIT

package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/canalview/canalview/internal/web/middleware"
)

// Router builds the HTTP handler with the full middleware stack.
func (s *Server) Router() http.Handler {
	r := middleware.NewRouter(middleware.StackConfig{
		EnableMetrics:   true,
		TracingService:  "canalview",
		EnableLogging:   true,
		GlobalRateLimit: s.cfg.GlobalRateLimit,
	})

	// Refresh is expensive; it gets its own, tighter limit.
	refreshLimit := func(next http.Handler) http.Handler { return next }
	if s.cfg.RefreshRateLimit > 0 {
		refreshLimit = middleware.RefreshRateLimit(s.cfg.RefreshRateLimit)
	}

	// Pages
	r.Get("/", s.handleIndex)
	r.Get("/channel/{id}", s.handleChannel)
	r.Get("/watch/{id}/{index}", s.handleWatch)
	r.Get("/history", s.handleHistoryPage)
	r.With(refreshLimit).Post("/refresh", s.handleRefresh)

	// JSON API
	r.Route("/api", func(api chi.Router) {
		api.Get("/channels", s.handleAPIChannels)
		api.Get("/channels/{id}", s.handleAPIChannel)
		api.Get("/status", s.handleAPIStatus)
		api.Get("/history", s.handleAPIHistory)
		api.With(refreshLimit).Post("/refresh", s.handleAPIRefresh)
	})

	// Export
	r.Get("/playlist.m3u", s.handlePlaylist)

	// Probes
	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)

	return r
}
