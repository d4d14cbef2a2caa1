// Package api exposes the finance tools over HTTP.
//
// Every tool registered in the catalogue is reachable at
// POST /api/v1/tools/{name} with the tool arguments as the JSON body.
// A few GET shortcuts cover the common lookups. Responses use the
// {success, data, error} envelope; failed calls carry the structured tool
// error and an HTTP status derived from its kind.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/seenimoa/finmcp/internal/config"
	"github.com/seenimoa/finmcp/internal/guardrail"
	"github.com/seenimoa/finmcp/internal/metrics"
	"github.com/seenimoa/finmcp/internal/service"
	"github.com/seenimoa/finmcp/internal/tools"
	"github.com/seenimoa/finmcp/pkg/models"
)

// ClientIDHeader names the caller whose rate budget a request spends.
// Requests without it are budgeted by client IP.
const ClientIDHeader = "X-Client-ID"

const maxBodyBytes = 1 << 20

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	cfg      *config.Config
	registry *tools.Registry
	metrics  *metrics.Metrics
	guard    *guardrail.Guard
	log      zerolog.Logger
	version  string
}

// Option customises a Server.
type Option func(*Server)

// WithMetrics serves the registry at /metrics.
func WithMetrics(m *metrics.Metrics) Option { return func(s *Server) { s.metrics = m } }

// WithLogger sets the access and error logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.log = l.With().Str("component", "api").Logger() }
}

// WithGuard lets /api/v1/limits report the caller's remaining budget.
func WithGuard(g *guardrail.Guard) Option { return func(s *Server) { s.guard = g } }

// WithVersion sets the version reported by /health.
func WithVersion(v string) Option { return func(s *Server) { s.version = v } }

// NewServer creates a server dispatching to the tools in registry.
func NewServer(cfg *config.Config, registry *tools.Registry, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		registry: registry,
		log:      zerolog.Nop(),
		version:  "dev",
	}
	for _, o := range opts {
		o(s)
	}
	s.router = s.buildRouter()
	return s
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      s.requestTimeout() + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func (s *Server) requestTimeout() time.Duration {
	if t := s.cfg.Analysis.RequestTimeout; t > 0 {
		return t
	}
	return 30 * time.Second
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(s.log))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		hlog.FromRequest(r).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", middleware.GetReqID(r.Context())).
			Int("status", status).
			Int("size", size).
			Dur("elapsed", d).
			Msg("request")
	}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.requestTimeout() + 5*time.Second))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID", ClientIDHeader},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/limits", s.handleGetLimits)

		// Tools
		r.Get("/tools", s.handleListTools)
		r.Get("/tools/{name}", s.handleDescribeTool)
		r.Post("/tools/{name}", s.handleCallTool)

		// Shortcuts
		r.Get("/quote/{ticker}", s.handleQuote)
		r.Get("/market/indices", s.handleMarketIndices)
		r.Get("/search/tickers", s.handleSearchTickers)
	})

	return r
}

// ============================================================
// Envelope
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool          `json:"success"`
	Data    any           `json:"data,omitempty"`
	Error   *models.Error `json:"error,omitempty"`
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind models.ErrorKind) int {
	switch kind {
	case models.KindInvalidSymbol, models.KindInvalidPeriod, models.KindInvalidWeights, models.KindInvalidArguments:
		return http.StatusBadRequest
	case models.KindRateLimitExceeded:
		return http.StatusTooManyRequests
	case models.KindNoDataFound:
		return http.StatusNotFound
	case models.KindInsufficientHistory, models.KindNoOverlap, models.KindDegenerateSeries:
		return http.StatusUnprocessableEntity
	case models.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]any{
			"status":  "ok",
			"version": s.version,
			"tools":   s.registry.Count(),
			"time":    time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: s.registry.List()})
}

func (s *Server) handleDescribeTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	tool, ok := s.registry.Get(name)
	if !ok {
		writeToolNotFound(w, name)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: tool})
}

func (s *Server) handleCallTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if _, ok := s.registry.Get(name); !ok {
		writeToolNotFound(w, name)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, models.NewError(models.KindInvalidArguments, "", "request body unreadable or larger than %d bytes", maxBodyBytes))
		return
	}
	s.call(w, r, name, body)
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	args := map[string]any{"symbol": chi.URLParam(r, "ticker")}
	q := r.URL.Query()
	for _, k := range []string{"period", "start_date", "end_date"} {
		if v := q.Get(k); v != "" {
			args[k] = v
		}
	}
	s.callWith(w, r, service.ToolStockPrice, args)
}

func (s *Server) handleMarketIndices(w http.ResponseWriter, r *http.Request) {
	args := map[string]any{}
	if v := r.URL.Query().Get("indices"); v != "" {
		args["indices"] = strings.Split(v, ",")
	}
	s.callWith(w, r, service.ToolMarketIndices, args)
}

func (s *Server) handleSearchTickers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	args := map[string]any{"query": q.Get("q")}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, models.NewError(models.KindInvalidArguments, "limit", "limit must be an integer"))
			return
		}
		args["max_results"] = n
	}
	s.callWith(w, r, service.ToolSearch, args)
}

func (s *Server) callWith(w http.ResponseWriter, r *http.Request, name string, args map[string]any) {
	body, err := json.Marshal(args)
	if err != nil {
		writeError(w, models.WrapError(models.KindInvalidArguments, "", err))
		return
	}
	s.call(w, r, name, body)
}

func (s *Server) call(w http.ResponseWriter, r *http.Request, name string, args []byte) {
	ctx := service.WithCaller(r.Context(), callerOf(r))
	out, err := s.registry.Execute(ctx, name, args)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: out})
}

// callerOf identifies the rate-limited caller: the client ID header when
// present, otherwise the remote IP.
func callerOf(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(ClientIDHeader)); id != "" {
		return id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	e := models.AsError(err)
	writeJSON(w, StatusFor(e.Kind), APIResponse{Success: false, Error: e})
}

func writeToolNotFound(w http.ResponseWriter, name string) {
	writeJSON(w, http.StatusNotFound, APIResponse{
		Success: false,
		Error:   models.NewError(models.KindInvalidArguments, "name", "%s: %s", tools.ErrToolNotFound, name),
	})
}
