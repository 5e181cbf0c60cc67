// Copyright 2026 Anapaya Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package httpapi serves the results of the most recent validation run over
// HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/pelletier/go-toml/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rpki-rp/validator/pkg/log"
	"github.com/rpki-rp/validator/private/report"
	"github.com/rpki-rp/validator/private/runmetrics"
	"github.com/rpki-rp/validator/private/storage/history"
)

//go:generate mockgen -destination=mock_httpapi/mock.go -package=mock_httpapi github.com/rpki-rp/validator/private/httpapi HistoryStore

// DefaultHistoryLimit is the number of runs returned by /history if no limit
// is requested.
const DefaultHistoryLimit = 20

// Problem types.
const (
	NotReady      = "/problems/not-ready"
	BadRequest    = "/problems/bad-request"
	InternalError = "/problems/internal-error"
)

// Latest holds the metrics of the most recent run. It is safe for concurrent
// use.
type Latest struct {
	p atomic.Pointer[runmetrics.Metrics]
}

// Store replaces the held metrics.
func (l *Latest) Store(m *runmetrics.Metrics) {
	l.p.Store(m)
}

// Load returns the held metrics, or nil before the first run.
func (l *Latest) Load() *runmetrics.Metrics {
	return l.p.Load()
}

// HistoryStore is the read access to the run history.
type HistoryStore interface {
	Recent(ctx context.Context, n int) ([]history.Run, error)
}

// Server implements the HTTP API.
type Server struct {
	// Latest is the source of the run metrics.
	Latest *Latest
	// Gatherer is exposed on /metrics. If nil, the default gatherer is used.
	Gatherer prometheus.Gatherer
	// History is exposed on /history. Optional.
	History HistoryStore
	// Config is served on /config. Optional.
	Config http.HandlerFunc
}

// Handler returns the router serving s.
func Handler(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
	}))
	gatherer := s.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/status", s.GetStatus)
	r.Get("/summary", s.GetSummary)
	if s.History != nil {
		r.Get("/history", s.GetHistory)
	}
	if s.Config != nil {
		r.Get("/config", s.Config)
	}
	r.Get("/log/level", log.ConsoleLevel.ServeHTTP)
	r.Put("/log/level", log.ConsoleLevel.ServeHTTP)
	return r
}

// GetStatus writes the JSON status of the latest run.
func (s *Server) GetStatus(w http.ResponseWriter, r *http.Request) {
	m, ok := s.latest(w)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := report.WriteJSON(w, m); err != nil {
		log.FromCtx(r.Context()).Error("Writing status", "err", err)
	}
}

// GetSummary writes the summary lines of the latest run as plain text.
func (s *Server) GetSummary(w http.ResponseWriter, r *http.Request) {
	m, ok := s.latest(w)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	for _, line := range m.Summary() {
		fmt.Fprintln(w, line)
	}
}

// GetHistory writes the most recent stored runs as JSON. The number of runs
// is controlled with the limit query parameter.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit := DefaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		l, err := strconv.Atoi(raw)
		if err != nil || l < 0 {
			ErrorResponse(w, Problem{
				Detail: fmt.Sprintf("invalid limit %q", raw),
				Status: http.StatusBadRequest,
				Title:  "malformed query parameter",
				Type:   BadRequest,
			})
			return
		}
		limit = l
	}
	runs, err := s.History.Recent(r.Context(), limit)
	if err != nil {
		ErrorResponse(w, Problem{
			Detail: err.Error(),
			Status: http.StatusInternalServerError,
			Title:  "error reading history",
			Type:   InternalError,
		})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(runs); err != nil {
		log.FromCtx(r.Context()).Error("Writing history", "err", err)
	}
}

func (s *Server) latest(w http.ResponseWriter) (*runmetrics.Metrics, bool) {
	m := s.Latest.Load()
	if m == nil {
		ErrorResponse(w, Problem{
			Detail: "no validation run has completed yet",
			Status: http.StatusServiceUnavailable,
			Title:  "not ready",
			Type:   NotReady,
		})
		return nil, false
	}
	return m, true
}

// ConfigHandler serves cfg encoded as TOML.
func ConfigHandler(cfg any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := toml.NewEncoder(w).Encode(cfg); err != nil {
			ErrorResponse(w, Problem{
				Detail: err.Error(),
				Status: http.StatusInternalServerError,
				Title:  "unable to marshal config",
				Type:   InternalError,
			})
		}
	}
}

// Problem is an RFC 7807 problem description.
type Problem struct {
	Detail string `json:"detail,omitempty"`
	Status int    `json:"status"`
	Title  string `json:"title"`
	Type   string `json:"type,omitempty"`
}

// ErrorResponse writes p as a problem response.
func ErrorResponse(w http.ResponseWriter, p Problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	// no point in catching error here, there is nothing we can do about it anymore.
	_ = enc.Encode(p)
}
