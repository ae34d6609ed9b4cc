// Package http exposes the bot over a small JSON API.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"ledgerbot/internal/bot"
	applog "ledgerbot/internal/log"
	"ledgerbot/internal/middleware/ratelimit"
	"ledgerbot/internal/middleware/security"
	"ledgerbot/internal/middleware/trace"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// maxBodyBytes bounds inbound JSON payloads.
const maxBodyBytes = 64 << 10

// MessageHandler is satisfied by *bot.Bot.
type MessageHandler interface {
	Handle(ctx context.Context, msg bot.Message) (bot.Reply, error)
	Replayed(userID, messageID string) bool
}

// Options configure NewServer. Zero limiters disable the matching limit.
type Options struct {
	Addr        string
	Bot         MessageHandler
	Logger      *applog.Logger
	UserLimiter *ratelimit.Limiter
	IPLimiter   *ratelimit.Limiter
	// TrustedProxies are CIDRs trusted to set X-Forwarded-For, in addition
	// to loopback and private networks.
	TrustedProxies []string
	// Ready reports whether dependencies are usable; nil means always ready.
	Ready func() error
}

type Server struct {
	http.Server
	bot         MessageHandler
	logger      *applog.Logger
	userLimiter *ratelimit.Limiter
	detector    *security.Detector
	ready       func() error
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		bot:         opts.Bot,
		logger:      logger,
		userLimiter: opts.UserLimiter,
		detector:    security.NewDetector(),
		ready:       opts.Ready,
	}

	for _, cidr := range opts.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", applog.FieldError, err)
		}
	}

	r := chi.NewRouter()
	r.Use(trace.NewMiddleware(logger, s.detector.ExtractClientIP).Handler)
	r.Use(applog.Middleware(logger, trace.FromRequest))
	r.Use(chimw.Recoverer)
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(s.flagSuspicious)

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/v1", func(r chi.Router) {
		if opts.IPLimiter != nil {
			r.Use(opts.IPLimiter.Middleware(s.detector.ExtractClientIP, s.onLimit))
		}
		r.With(chimw.AllowContentType("application/json")).Post("/messages", s.handleMessage)
		r.Get("/keyboard", handleKeyboard)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Run serves until ctx is cancelled, then drains connections for at most
// shutdownTimeout.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", s.Addr, applog.FieldOperation, applog.OpStartup)
		errCh <- s.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("HTTP server shutting down", applog.FieldOperation, applog.OpShutdown)
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// SuspiciousRequests returns how many requests matched a probe pattern.
func (s *Server) SuspiciousRequests() int64 {
	return s.detector.SuspiciousRequests()
}

func (s *Server) flagSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.IsSuspicious(r) {
			applog.FromContext(r.Context()).Warn("Suspicious request",
				applog.FieldClientIP, s.detector.ExtractClientIP(r),
				applog.FieldPath, r.URL.Path,
			)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) onLimit(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).Warn("Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldPath, r.URL.Path,
	)
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
}
