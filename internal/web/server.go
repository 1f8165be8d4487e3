// SPDX-License-Identifier: MIT

// Package web serves the channel browser UI and the JSON API.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/canalview/canalview/internal/catalog"
	"github.com/canalview/canalview/internal/config"
	"github.com/canalview/canalview/internal/health"
	"github.com/canalview/canalview/internal/history"
	"github.com/canalview/canalview/internal/jobs"
	xlog "github.com/canalview/canalview/internal/log"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server holds the handler dependencies. History may be nil when watch
// history is disabled.
type Server struct {
	cfg       config.AppConfig
	catalog   *catalog.Store
	refresher *jobs.Refresher
	history   *history.Store
	health    *health.Manager

	tmpl      *template.Template
	startTime time.Time
}

// New creates the web server and parses the embedded templates.
func New(cfg config.AppConfig, cat *catalog.Store, refresher *jobs.Refresher, hist *history.Store, hm *health.Manager) (*Server, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"seq": func(n int) []int {
			out := make([]int, n)
			for i := range out {
				out[i] = i
			}
			return out
		},
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	return &Server{
		cfg:       cfg,
		catalog:   cat,
		refresher: refresher,
		history:   hist,
		health:    hm,
		tmpl:      tmpl,
		startTime: time.Now(),
	}, nil
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		logger := xlog.WithComponentFromContext(r.Context(), "web")
		logger.Error().
			Err(err).
			Str("event", "web.render_failed").
			Str("template", name).
			Msg("template execution failed")
	}
}
