// Package web provides the HTTP server and handlers for the data cleaning UI.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/sweeper/internal/config"
	"github.com/JonMunkholm/sweeper/internal/core"
	"github.com/JonMunkholm/sweeper/internal/metrics"
	"github.com/JonMunkholm/sweeper/internal/web/middleware"
)

// contentSecurityPolicy restricts pages to same-origin resources. Inline
// styles are used by the dashboard.
const contentSecurityPolicy = "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; font-src 'self'"

// Server is the HTTP server for the data cleaning application.
type Server struct {
	service  *core.Service
	cfg      *config.Config
	metrics  *metrics.Metrics
	router   *chi.Mux
	server   *http.Server
	validate *validator.Validate

	limiter       *middleware.RateLimiter
	uploadLimiter *middleware.RateLimiter
	cleanupCtx    context.Context
	stopCleanup   context.CancelFunc
}

// NewServer creates a new Server instance. m may be nil when metrics are off.
func NewServer(service *core.Service, cfg *config.Config, m *metrics.Metrics) *Server {
	s := &Server{
		service:  service,
		cfg:      cfg,
		metrics:  m,
		router:   chi.NewRouter(),
		validate: newValidator(),
	}
	if cfg.Rate.Enabled {
		s.limiter = middleware.NewRateLimiter(cfg.Rate.RequestsPerMinute, cfg.Rate.Burst)
		if cfg.Rate.UploadLimit > 0 {
			s.uploadLimiter = middleware.NewRateLimiter(cfg.Rate.UploadLimit, max(1, cfg.Rate.UploadLimit/2))
		}
	}
	s.setupMiddleware()
	s.setupRoutes()

	s.cleanupCtx, s.stopCleanup = context.WithCancel(context.Background())
	s.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	}

	// Security hardening
	s.router.Use(s.securityHeaders)

	if s.limiter != nil {
		s.router.Use(s.limiter.Middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	if s.cfg.Metrics.Enabled && s.metrics != nil {
		s.router.Handle(s.cfg.Metrics.Path, s.metrics.Handler())
	}

	s.router.Group(func(r chi.Router) {
		r.Use(s.withSession)

		// Pages
		r.Get("/", s.handleDashboard)

		// API routes
		r.Route("/api", func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(&s.cfg.Security))

			// Files
			r.With(s.uploadRateLimit).Post("/files", s.handleUpload)
			r.Get("/files", s.handleListFiles)
			r.Delete("/files/{name}", s.handleRemoveFile)
			r.Post("/files/{name}/remove", s.handleRemoveFile)
			r.Post("/reset", s.handleReset)

			// Inspection
			r.Get("/files/{name}/preview", s.handlePreview)
			r.Get("/files/{name}/summary", s.handleSummary)
			r.Get("/files/{name}/chart", s.handleChart)

			// Cleaning
			r.Post("/files/{name}/duplicates", s.handleDuplicates)
			r.Post("/files/{name}/drop-missing", s.handleDropMissing)
			r.Post("/files/{name}/fill", s.handleFill)
			r.Post("/files/{name}/columns", s.handleSelectColumns)

			// Downloads
			r.Get("/files/{name}/export", s.handleExport)
			r.Get("/archive", s.handleArchive)
		})
	})
}

// uploadRateLimit applies the stricter upload limit when configured.
func (s *Server) uploadRateLimit(next http.Handler) http.Handler {
	if s.uploadLimiter == nil {
		return next
	}
	return s.uploadLimiter.Middleware(next)
}

// Start begins listening for HTTP requests. It returns
// http.ErrServerClosed once Shutdown has been called, including when
// Shutdown ran first.
func (s *Server) Start() error {
	for _, rl := range []*middleware.RateLimiter{s.limiter, s.uploadLimiter} {
		if rl != nil {
			go rl.StartCleanup(s.cleanupCtx, time.Minute)
		}
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server. It is safe to call from another
// goroutine than Start.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopCleanup()
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func (s *Server) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Prevent MIME type sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Prevent clickjacking
		w.Header().Set("X-Frame-Options", "DENY")

		if s.cfg.Security.EnableCSP {
			w.Header().Set("Content-Security-Policy", contentSecurityPolicy)
		}

		// Control referrer information
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}
