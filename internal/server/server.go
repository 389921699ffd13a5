// Package server provides the intake HTTP service: wizard sessions, the
// criterion registry and the derived dashboard over the Matching Guru API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/matching-guru/internal/api"
	"github.com/jonathan/matching-guru/internal/config"
	"github.com/jonathan/matching-guru/internal/metrics"
	"github.com/jonathan/matching-guru/internal/server/middleware"
	"github.com/jonathan/matching-guru/internal/server/ratelimit"
	"github.com/jonathan/matching-guru/internal/wizard"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server represents the HTTP server
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	allowedOrigin   string

	client      *api.Client
	store       *wizard.Store
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	validate    *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// Deps are the collaborators a server can be given instead of building its own
type Deps struct {
	Client *api.Client
	Store  *wizard.Store
	Logger *zap.Logger
	// Now is the clock used for dashboard derivation.
	Now func() time.Time
}

// New creates a new server instance
func New(cfg *config.Config, deps Deps) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	jwtConfig, err := config.NewJWTConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}

	client := deps.Client
	if client == nil {
		client, err = api.NewClient(cfg.Upstream.BaseURL, &api.Options{
			Timeout: cfg.Upstream.Timeout,
			Logger:  logger.Named("upstream"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create upstream client: %w", err)
		}
	}

	store := deps.Store
	if store == nil {
		store = wizard.NewStore(cfg.Session.TTL, cfg.Session.CleanupInterval, logger.Named("sessions"))
	}

	now := deps.Now
	if now == nil {
		now = time.Now
	}

	s := &Server{
		shutdownTimeout: cfg.Server.ShutdownTimeout,
		allowedOrigin:   cfg.Server.AllowedOrigin,
		client:          client,
		store:           store,
		rateLimiter:     ratelimit.NewLimiter(ratelimit.NewConfig(cfg.RateLimit)),
		jwtService:      NewJWTService(jwtConfig),
		validate:        validator.New(validator.WithRequiredStructEnabled()),
		logger:          logger,
		now:             now,
	}

	protected := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	authed := func(h http.HandlerFunc) http.Handler { return protected(h) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.Handle("GET /criteria", authed(s.handleCriteria))

	// Intake wizard sessions
	mux.Handle("POST /intake/sessions", authed(s.handleCreateSession))
	mux.Handle("GET /intake/sessions/{id}", authed(s.handleGetSession))
	mux.Handle("PATCH /intake/sessions/{id}/answers", authed(s.handleUpdateAnswers))
	mux.Handle("POST /intake/sessions/{id}/next", authed(s.handleNext))
	mux.Handle("POST /intake/sessions/{id}/back", authed(s.handleBack))
	mux.Handle("POST /intake/sessions/{id}/validate", authed(s.handleValidateSession))
	mux.Handle("POST /intake/sessions/{id}/submit", authed(s.handleSubmit))
	mux.Handle("DELETE /intake/sessions/{id}", authed(s.handleDeleteSession))

	mux.Handle("GET /dashboard", authed(s.handleDashboard))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * cfg.Upstream.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped request handler
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.Close()
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	return s.Shutdown(ctx)
}

// Shutdown drains in-flight requests and releases background workers
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.Close()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Close stops the session and rate limiter cleanup loops. Safe to call more than once.
func (s *Server) Close() {
	s.rateLimiter.Stop()
	s.store.Stop()
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging logs every request and counts it by status
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		metrics.HTTPRequests.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote", r.RemoteAddr))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.store.Len(),
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, ErrorBody{Error: message})
}

// extractClientID extracts the client identifier from the request.
// X-Forwarded-For is ignored; the service is expected to sit behind a
// proxy that rewrites RemoteAddr if per-user limits are wanted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.logger.Warn("rate limit exceeded",
		zap.String("client", s.extractClientID(r)),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("limit", info.Limit))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
