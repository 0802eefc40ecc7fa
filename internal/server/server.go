// Package server provides the HTTP REST API for résumé analysis.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"reflect"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/cv-analyzer/internal/config"
	"github.com/jonathan/cv-analyzer/internal/db"
	"github.com/jonathan/cv-analyzer/internal/pipeline"
	"github.com/jonathan/cv-analyzer/internal/server/middleware"
	"github.com/jonathan/cv-analyzer/internal/server/ratelimit"
)

// Version is reported by the service banner.
const Version = "1.0.0"

// Server represents the HTTP server
type Server struct {
	cfg         *config.ServerConfig
	analyzer    *pipeline.Analyzer
	db          *db.DB
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	validator   *validator.Validate
	handler     http.Handler
}

// Deps are the collaborators a Server is built from. Only Analyzer is
// required; a nil DB disables analysis history, a nil JWT disables auth and a
// nil RateLimiter is built from the RATE_LIMIT_* environment.
type Deps struct {
	Analyzer    *pipeline.Analyzer
	DB          *db.DB
	JWT         *JWTService
	RateLimiter *ratelimit.Limiter
}

// New creates a new server instance
func New(cfg *config.ServerConfig, deps Deps) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("server config is required")
	}
	if deps.Analyzer == nil {
		return nil, errors.New("analyzer is required")
	}

	s := &Server{
		cfg:         cfg,
		analyzer:    deps.Analyzer,
		db:          deps.DB,
		rateLimiter: deps.RateLimiter,
		jwtService:  deps.JWT,
		validator:   newValidator(),
	}
	if s.rateLimiter == nil {
		s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)

	api := http.NewServeMux()
	api.HandleFunc("POST /api/analyze", s.handleAnalyze)
	api.HandleFunc("POST /api/analyze/text", s.handleAnalyzeText)
	api.HandleFunc("POST /api/analyze/stream", s.handleAnalyzeStream)
	api.HandleFunc("GET /api/analyses", s.handleListAnalyses)
	api.HandleFunc("GET /api/analyses/{id}", s.handleGetAnalysis)

	var apiHandler http.Handler = api
	if s.jwtService != nil {
		apiHandler = middleware.AuthMiddleware(s.jwtService.AsTokenValidator(), s.unauthorized)(api)
	}
	mux.Handle("/api/", apiHandler)

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))
	return s, nil
}

// Handler returns the root handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts
// down gracefully within the configured grace period.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", httpServer.Addr, "auth", s.jwtService != nil, "history", s.db != nil)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.Close()
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server", "grace", s.cfg.ShutdownGrace)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownGrace)
	defer cancel()

	err := httpServer.Shutdown(shutdownCtx)
	s.Close()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

// Close releases background resources. The database is owned by the caller.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept-Language")
		w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type requestIDKey struct{}

// requestLogger returns the default logger tagged with the request id.
func requestLogger(r *http.Request) *slog.Logger {
	if id, ok := r.Context().Value(requestIDKey{}).(string); ok {
		return slog.With("request_id", id)
	}
	return slog.Default()
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// withLogging assigns a request id and logs each request once it completes.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id))

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		requestLogger(r).Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"remote", r.RemoteAddr,
		)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractClientID uses the IP address from RemoteAddr. Forwarded headers are
// not trusted.
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
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Round(time.Second).Seconds())
		seconds = max(seconds, 1)
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	slog.Warn("rate limit exceeded",
		"client", s.extractClientID(r),
		"method", r.Method,
		"path", r.URL.Path,
		"limit", info.Limit,
		"reset_at", info.ResetTime.Format(time.RFC3339),
	)

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}

func (s *Server) unauthorized(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="cv-analyzer"`)
	s.errorResponse(w, http.StatusUnauthorized, "unauthorized")
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
