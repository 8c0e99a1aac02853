// Package server exposes the job board over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/jobmatch/internal/service"
)

const (
	defaultAddress         = ":8080"
	defaultRateLimit       = 10
	defaultRateLimitWindow = time.Minute
	shutdownTimeout        = 10 * time.Second
)

type RateLimitConfig struct {
	RedisAddr string        `mapstructure:"redis-addr"`
	Limit     int           `mapstructure:"limit"`
	Window    time.Duration `mapstructure:"window"`
}

type Config struct {
	Address       string          `mapstructure:"address"`
	JWTSecret     string          `mapstructure:"jwt-secret"`
	JWTSecretFile string          `mapstructure:"jwt-secret-file"`
	TokenTTL      time.Duration   `mapstructure:"token-ttl"`
	RateLimit     RateLimitConfig `mapstructure:"rate-limit"`
}

type Server struct {
	board   *service.Board
	tokens  *Tokens
	limiter Limiter
	cfg     Config
	logger  *zap.Logger
}

// New builds the API server. A nil limiter disables rate limiting.
func New(board *service.Board, tokens *Tokens, limiter Limiter, cfg Config, log *zap.Logger) *Server {
	if cfg.Address == "" {
		cfg.Address = defaultAddress
	}
	if cfg.RateLimit.Limit <= 0 {
		cfg.RateLimit.Limit = defaultRateLimit
	}
	if cfg.RateLimit.Window <= 0 {
		cfg.RateLimit.Window = defaultRateLimitWindow
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{board: board, tokens: tokens, limiter: limiter, cfg: cfg, logger: log}
}

func (s *Server) Handler() http.Handler {
	auth := Authenticate(s.tokens)
	limited := func(prefix string, h http.HandlerFunc) http.Handler {
		return auth(RateLimit(s.limiter, userOrIPKey(prefix), s.cfg.RateLimit.Limit, s.cfg.RateLimit.Window)(h))
	}
	protected := func(h http.HandlerFunc) http.Handler { return auth(h) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.Handle("GET /profile", protected(s.handleCurrentProfile))
	mux.Handle("POST /profile", limited("profile", s.handleUpsertProfile))
	mux.Handle("PUT /profile/auto-apply", protected(s.handleAutoApply))
	mux.Handle("GET /profiles/{id}", protected(s.handleGetProfile))

	mux.Handle("GET /company", protected(s.handleCurrentCompany))
	mux.Handle("POST /company", protected(s.handleUpsertCompany))
	mux.Handle("GET /companies", protected(s.handleListCompanies))
	mux.Handle("GET /companies/{id}", protected(s.handleGetCompany))
	mux.Handle("GET /companies/{id}/jobs", protected(s.handleCompanyJobs))

	mux.Handle("GET /jobs", protected(s.handleListJobs))
	mux.Handle("POST /jobs", protected(s.handleCreateJob))
	mux.Handle("GET /jobs/mine", protected(s.handleMyJobs))
	mux.Handle("GET /jobs/{id}", protected(s.handleGetJob))
	mux.Handle("PATCH /jobs/{id}", protected(s.handleUpdateJob))
	mux.Handle("POST /jobs/{id}/applications", limited("apply", s.handleApply))
	mux.Handle("GET /jobs/{id}/applications", protected(s.handleJobApplications))

	mux.Handle("GET /applications", protected(s.handleMyApplications))
	mux.Handle("PUT /applications/{id}/status", protected(s.handleApplicationStatus))

	mux.Handle("GET /recommendations", protected(s.handleRecommendations))
	mux.Handle("POST /recommendations/{id}/viewed", protected(s.handleRecommendationViewed))

	return s.logRequests(mux)
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("address", s.cfg.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// fail writes the mapped status for err. Unexpected errors are logged and hidden from the client.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}
