// Package httpserver implements the HTTP surface of spec.md §4.10: a
// chi-routed server translating GET/{app}/{profile}[/{label}] and
// DELETE /cache* requests into the configsource.Source + cache pipeline,
// negotiating response format from Accept, and exposing /health and
// /metrics.
package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cburgosro9303/vortex-config/internal/cache"
	"github.com/cburgosro9303/vortex-config/internal/cachekey"
	"github.com/cburgosro9303/vortex-config/internal/configsource"
	"github.com/cburgosro9303/vortex-config/internal/metricsutil"
	"github.com/cburgosro9303/vortex-config/internal/vortexerr"
)

func itoa(n int) string { return strconv.Itoa(n) }

// asLabelNotFound reports whether err is a vortexerr.Error of
// KindLabelNotFound, the only case useDefaultLabel=true absorbs.
func asLabelNotFound(err error) (*vortexerr.Error, bool) {
	verr, ok := vortexerr.As(err)
	if !ok || verr.Kind != vortexerr.KindLabelNotFound {
		return nil, false
	}
	return verr, true
}

const (
	queryUseDefaultLabel = "useDefaultLabel"
	queryForceRefresh    = "forceRefresh"
)

// Server wires a configsource.Source, an optional request-coalescing
// Cache, and Prometheus metrics into an http.Handler.
type Server struct {
	source  configsource.Source
	cache   *cache.Cache
	metrics *metricsutil.Metrics
}

// NewServer constructs a Server. cache and metrics may be nil: a nil
// cache bypasses caching entirely (every request hits source directly,
// and cache invalidation endpoints report the cache disabled); a nil
// metrics handle disables Prometheus recording, but /metrics is always
// served (empty registry) for operational consistency.
func NewServer(source configsource.Source, c *cache.Cache, m *metricsutil.Metrics) *Server {
	return &Server{source: source, cache: c, metrics: m}
}

// Router builds the chi.Router serving every route in spec.md §4.10.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware, s.loggingMiddleware)

	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		r.Get("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}).ServeHTTP)
	} else {
		r.Get("/metrics", promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{}).ServeHTTP)
	}

	r.Delete("/cache", s.handleInvalidateAll)
	r.Delete("/cache/{app}", s.handleInvalidateApp)
	r.Delete("/cache/{app}/{profile}", s.handleInvalidateAppProfile)
	r.Delete("/cache/{app}/{profile}/{label}", s.handleInvalidateAppProfileLabel)

	r.Get("/{app}/{profile}", s.handleConfig)
	r.Get("/{app}/{profile}/{label}", s.handleConfig)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.source.HealthCheck(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "UP"})
}

// handleConfig serves both GET /{app}/{profile} and
// GET /{app}/{profile}/{label}: the label route param is empty for the
// two-segment form, in which case the source's default label applies.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	app := chi.URLParam(r, "app")
	profiles := splitProfiles(chi.URLParam(r, "profile"))

	label := ""
	if raw := chi.URLParam(r, "label"); raw != "" {
		decoded := sanitizedLabel(raw)
		if err := validateLabel(decoded); err != nil {
			writeError(w, err)
			return
		}
		label = decoded
	}

	useDefaultLabel := r.URL.Query().Get(queryUseDefaultLabel) == "true"
	forceRefresh := r.URL.Query().Get(queryForceRefresh) == "true"

	query := configsource.Query{Application: app, Profiles: profiles, Label: label}
	result, err := s.fetch(r.Context(), query, forceRefresh)
	if err != nil && useDefaultLabel {
		if _, ok := asLabelNotFound(err); ok {
			query.Label = s.source.DefaultLabel()
			result, err = s.fetch(r.Context(), query, forceRefresh)
		}
	}
	if err != nil {
		writeError(w, err)
		return
	}

	format := FormatFromAccept(r.Header.Get("Accept"))
	writeConfigResponse(w, result, format)
}

// fetch runs query through the cache, if one is configured, or directly
// against the source otherwise. forceRefresh bypasses the cache's read
// for this request only and stores the fresh result on success, per
// SPEC_FULL.md §9 item 3.
func (s *Server) fetch(ctx context.Context, query configsource.Query, forceRefresh bool) (*configsource.Result, error) {
	if s.cache == nil {
		return s.source.Fetch(ctx, query)
	}

	key := cachekey.New(query.Application, query.Profiles, query.Label)
	if forceRefresh {
		result, err := s.source.Fetch(ctx, query)
		if err != nil {
			return nil, err
		}
		s.cache.Insert(key, result)
		return result, nil
	}

	return s.cache.GetOrFetch(ctx, key, func(ctx context.Context) (*configsource.Result, error) {
		return s.source.Fetch(ctx, query)
	})
}

// invalidationResponse is the body spec.md §6.2 describes.
type invalidationResponse struct {
	Invalidated int    `json:"invalidated"`
	Message     string `json:"message"`
}

func (s *Server) writeInvalidation(w http.ResponseWriter, result cache.InvalidationResult) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(invalidationResponse{
		Invalidated: result.Count,
		Message:     "invalidated " + itoa(result.Count) + " entries",
	})
}

func (s *Server) writeCacheDisabled(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(invalidationResponse{Invalidated: 0, Message: "cache is disabled"})
}

func (s *Server) handleInvalidateAll(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		s.writeCacheDisabled(w)
		return
	}
	s.writeInvalidation(w, s.cache.InvalidateAll())
}

func (s *Server) handleInvalidateApp(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		s.writeCacheDisabled(w)
		return
	}
	app := chi.URLParam(r, "app")
	s.writeInvalidation(w, s.cache.InvalidateByApp(app))
}

func (s *Server) handleInvalidateAppProfile(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		s.writeCacheDisabled(w)
		return
	}
	app := chi.URLParam(r, "app")
	profile := chi.URLParam(r, "profile")
	s.writeInvalidation(w, s.cache.InvalidateByAppProfile(app, profile))
}

func (s *Server) handleInvalidateAppProfileLabel(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		s.writeCacheDisabled(w)
		return
	}
	app := chi.URLParam(r, "app")
	profile := chi.URLParam(r, "profile")
	label := chi.URLParam(r, "label")
	s.writeInvalidation(w, s.cache.InvalidateByAppProfileLabel(app, profile, label))
}
