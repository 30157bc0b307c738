// Package api exposes the dashboard as a small JSON HTTP API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/alerts"
	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/dashboard"
	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/generator"
	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/repository"
	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/screener"
	"github.com/shubham-shewale/stock-dashboard/cmd/dashboard/internal/table"
	"github.com/shubham-shewale/stock-dashboard/pkg/models"
)

const (
	maxBodyBytes   = 1 << 16
	requestTimeout = 30 * time.Second
)

type Server struct {
	logger *zap.Logger
	dash   *dashboard.Dashboard
	prefs  repository.KVStore
}

func NewServer(logger *zap.Logger, dash *dashboard.Dashboard, prefs repository.KVStore) *Server {
	return &Server{logger: logger, dash: dash, prefs: prefs}
}

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/quotes", s.handleQuotes)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("POST /api/reload", s.handleReload)
	mux.HandleFunc("GET /api/metrics", s.handleMetrics)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/stocks/{symbol}", s.handleDetail)
	mux.HandleFunc("GET /api/watchlist", s.handleGetWatchlist)
	mux.HandleFunc("POST /api/watchlist/{symbol}", s.handleSetWatchlist)
	mux.HandleFunc("DELETE /api/watchlist/{symbol}", s.handleSetWatchlist)
	mux.HandleFunc("GET /api/alerts", s.handleListAlerts)
	mux.HandleFunc("PUT /api/alerts/{symbol}", s.handleSetAlert)
	mux.HandleFunc("DELETE /api/alerts/{symbol}", s.handleRemoveAlert)
	mux.HandleFunc("GET /api/notifications", s.handleNotifications)
	mux.HandleFunc("DELETE /api/notifications/{id}", s.handleDismiss)
	mux.HandleFunc("POST /api/screener", s.handleApplyScreener)
	mux.HandleFunc("DELETE /api/screener", s.handleClearScreener)
	mux.HandleFunc("GET /api/theme", s.handleGetTheme)
	mux.HandleFunc("PUT /api/theme", s.handleSetTheme)
}

// Handler returns the routes wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return s.logRequests(mux)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)),
		)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func symbolParam(r *http.Request) string {
	return strings.ToUpper(strings.TrimSpace(r.PathValue("symbol")))
}

func validFilter(f string) bool {
	switch f {
	case "", table.FilterAll, table.FilterWatchlist:
		return true
	}
	return models.Recommendation(f).Valid()
}

func (s *Server) handleQuotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := q.Get("filter")
	if !validFilter(filter) {
		s.writeError(w, http.StatusBadRequest, "unknown filter: "+filter)
		return
	}
	rows := s.dash.Rows(q.Get("search"), filter, table.ParseSortMode(q.Get("sort")))
	s.writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.dash.Status())
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	if err := s.dash.Retry(ctx); err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, s.dash.Status())
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.dash.Metrics())
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	indices, err := s.dash.Summary(r.Context())
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, indices)
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	rng := models.TimeRange(strings.ToUpper(r.URL.Query().Get("range")))
	detail, err := s.dash.Detail(ctx, symbolParam(r), rng)
	switch {
	case errors.Is(err, dashboard.ErrUnknownSymbol):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, generator.ErrUnknownRange):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		s.writeError(w, http.StatusBadGateway, err.Error())
	default:
		s.writeJSON(w, http.StatusOK, detail)
	}
}

func (s *Server) handleGetWatchlist(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.dash.Watchlist())
}

// POST adds and DELETE removes. Both are idempotent.
func (s *Server) handleSetWatchlist(w http.ResponseWriter, r *http.Request) {
	symbol := symbolParam(r)
	in := r.Method == http.MethodPost

	err := s.dash.SetWatchlist(r.Context(), symbol, in)
	if errors.Is(err, dashboard.ErrUnknownSymbol) {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"symbol": symbol, "inWatchlist": in})
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.dash.Alerts())
}

func (s *Server) handleSetAlert(w http.ResponseWriter, r *http.Request) {
	var a models.PriceAlert
	if err := decode(w, r, &a); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid alert body: "+err.Error())
		return
	}
	rec, err := s.dash.SetAlert(symbolParam(r), a)
	switch {
	case errors.Is(err, dashboard.ErrUnknownSymbol):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, alerts.ErrInvalidAlert):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	default:
		s.writeJSON(w, http.StatusOK, rec)
	}
}

func (s *Server) handleRemoveAlert(w http.ResponseWriter, r *http.Request) {
	if !s.dash.RemoveAlert(symbolParam(r)) {
		s.writeError(w, http.StatusNotFound, "no alert for "+symbolParam(r))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.dash.Notifications())
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	if !s.dash.DismissNotification(r.PathValue("id")) {
		s.writeError(w, http.StatusNotFound, "no such notification")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type screenerRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleApplyScreener(w http.ResponseWriter, r *http.Request) {
	var req screenerRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid screener body: "+err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	c, err := s.dash.ApplyScreener(ctx, req.Query)
	switch {
	case errors.Is(err, screener.ErrEmptyQuery), errors.Is(err, screener.ErrNoCriteria):
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
	case err != nil:
		s.writeError(w, http.StatusBadGateway, err.Error())
	default:
		s.writeJSON(w, http.StatusOK, c)
	}
}

func (s *Server) handleClearScreener(w http.ResponseWriter, r *http.Request) {
	s.dash.ClearScreener()
	w.WriteHeader(http.StatusNoContent)
}

type themeBody struct {
	Theme string `json:"theme"`
}

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := repository.Theme(r.Context(), s.prefs)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, themeBody{Theme: theme})
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var body themeBody
	if err := decode(w, r, &body); err != nil || (body.Theme != "light" && body.Theme != "dark") {
		s.writeError(w, http.StatusBadRequest, `theme must be "light" or "dark"`)
		return
	}
	if err := repository.SetTheme(r.Context(), s.prefs, body.Theme); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, body)
}
