package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fsmonitor/internal/history"
	"fsmonitor/internal/metrics"
	"fsmonitor/internal/models"
	"fsmonitor/internal/scheduler"
)

// FieldSource exposes the latest published fields.
type FieldSource interface {
	Fields() models.Fields
	UpdatedAt() time.Time
}

// TargetSource exposes registered targets and their snapshots.
type TargetSource interface {
	Targets() []scheduler.TargetStatus
}

// AlertSource exposes stored alerts.
type AlertSource interface {
	Recent(limit int) []models.Alert
}

// Deps are the read-only views served over HTTP.
type Deps struct {
	Fields   FieldSource
	Targets  TargetSource
	Alerts   AlertSource
	Gatherer prometheus.Gatherer
}

// Server wraps HTTP serving of the monitor API.
type Server struct {
	httpServer   *http.Server
	deps         Deps
	historyLimit int
	pushInterval time.Duration
}

// New creates a configured HTTP server for the monitor.
func New(addr string, deps Deps) *Server {
	mux := http.NewServeMux()
	s := &Server{
		httpServer:   &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second},
		deps:         deps,
		historyLimit: 200,
		pushInterval: streamPushInterval,
	}
	s.registerRoutes(mux)
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run blocks and serves HTTP traffic.
func (s *Server) Run() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts the server down.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/targets", s.handleTargets)
	mux.HandleFunc("/api/alerts", s.handleAlerts)
	mux.HandleFunc("/api/alerts/summary", s.handleAlertSummary)
	mux.HandleFunc("/api/alerts/timeline", s.handleAlertTimeline)
	mux.HandleFunc("/api/stream", s.handleStream)
	if s.deps.Gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{}))
	}
}

type statusResponse struct {
	Fields    models.Fields `json:"fields"`
	UpdatedAt *time.Time    `json:"updated_at"`
}

func (s *Server) status() statusResponse {
	resp := statusResponse{Fields: s.deps.Fields.Fields()}
	if ts := s.deps.Fields.UpdatedAt(); !ts.IsZero() {
		resp.UpdatedAt = &ts
	}
	return resp
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.status())
}

func (s *Server) targets() []scheduler.TargetStatus {
	if s.deps.Targets == nil {
		return []scheduler.TargetStatus{}
	}
	return s.deps.Targets.Targets()
}

func (s *Server) handleTargets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.targets())
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, s.historyLimit)
	writeJSON(w, http.StatusOK, s.recentAlerts(limit))
}

func (s *Server) handleAlertSummary(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, s.historyLimit)
	summary := metrics.Summarize(s.recentAlerts(limit))
	if summary == nil {
		summary = []metrics.AlertSummary{}
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleAlertTimeline(w http.ResponseWriter, r *http.Request) {
	hours := parseBounded(r, "hours", 24, 24*7)
	points := parseBounded(r, "points", history.DefaultTimelinePoints, 288)
	end := time.Now().UTC()
	start := end.Add(-time.Duration(hours) * time.Hour)

	statuses := s.targets()
	targets := make([]models.Target, 0, len(statuses))
	for _, st := range statuses {
		targets = append(targets, st.Target)
	}
	timelines := history.BuildAlertTimelines(s.recentAlerts(0), targets, start, end, points)
	if timelines == nil {
		timelines = []models.TargetTimeline{}
	}
	writeJSON(w, http.StatusOK, timelines)
}

// recentAlerts returns up to limit alerts, newest first. A limit of zero
// returns everything stored.
func (s *Server) recentAlerts(limit int) []models.Alert {
	if s.deps.Alerts == nil {
		return []models.Alert{}
	}
	return s.deps.Alerts.Recent(limit)
}

func parseLimit(r *http.Request, fallback int) int {
	if fallback <= 0 {
		return fallback
	}
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	if value > fallback {
		return fallback
	}
	return value
}

func parseBounded(r *http.Request, key string, fallback, ceiling int) int {
	value, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || value <= 0 {
		return fallback
	}
	if value > ceiling {
		return ceiling
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}
