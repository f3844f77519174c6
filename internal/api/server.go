// Package api provides the HTTP API server and handlers for the shelfmatch catalog.
package api

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	domainerrors "github.com/listenupapp/shelfmatch/internal/errors"
	"github.com/listenupapp/shelfmatch/internal/ratelimit"
	"github.com/listenupapp/shelfmatch/internal/validation"
)

// Options tunes the server's outer surface.
type Options struct {
	// AdminKey guards write endpoints. Empty disables them.
	AdminKey string

	AllowedOrigins []string
	MaxUploadBytes int64

	// Write requests per second allowed per client address, and burst.
	RateLimit float64
	RateBurst int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services  *Services
	router    *chi.Mux
	api       huma.API
	validator *validation.Validator
	limiter   *ratelimit.KeyedRateLimiter
	logger    *slog.Logger
	opts      Options
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(services *Services, opts Options, logger *slog.Logger) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = MaxUploadSize
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultWriteRate
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = DefaultWriteBurst
	}

	s := &Server{
		services:  services,
		router:    chi.NewRouter(),
		validator: validation.New(),
		limiter:   ratelimit.New(opts.RateLimit, opts.RateBurst),
		logger:    logger,
		opts:      opts,
	}

	s.setupMiddleware()

	RegisterErrorHandler()
	humaConfig := huma.DefaultConfig("shelfmatch API", "1.0.0")
	humaConfig.Info.Description = "Book catalog ingestion, conflict review and preference matching"
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(s.router, humaConfig)

	s.registerRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	s.limiter.Stop()
}

// API exposes the huma API, mainly for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	origins := s.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", AdminKeyHeader},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
}

func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerBookRoutes()
	s.registerImportRoutes()
	s.registerConflictRoutes()
	s.registerRecommendationRoutes()
}

// requireAdmin checks the admin key presented with a write request.
func (s *Server) requireAdmin(presented string) error {
	if s.opts.AdminKey == "" {
		return domainerrors.Forbidden("Write access is disabled on this server")
	}
	if presented == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(s.opts.AdminKey)) != 1 {
		return domainerrors.Forbidden("Admin key required")
	}
	return nil
}

// validate runs struct validation on a request body.
func (s *Server) validate(body any) error {
	return s.validator.Validate(body)
}
