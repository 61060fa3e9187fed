// Package fakeapi serves canned Virtusize API responses for local development and end-to-end tests.
//
// Every Virtusize host is mounted on one router. The api host lives at the root and the others
// under the prefixes defined in pkg/api, so a client configured with BaseURL reaches all of them.
package fakeapi

import (
	"embed"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/virtusize/virtusize-go/internal/logging"
	"github.com/virtusize/virtusize-go/internal/metrics"
	"github.com/virtusize/virtusize-go/pkg/api"
	"github.com/virtusize/virtusize-go/pkg/endpoint"
)

//go:embed fixtures/*.json
var fixtures embed.FS

const (
	defaultAPIKey        = "test_apiKey"
	defaultAoyamaVersion = "3.5.0"
	knownExternalID      = "694"
	knownStoreProductID  = "7110384"
)

// Config holds fake API configuration.
type Config struct {
	// APIKey is the only key the fake accepts. Defaults to "test_apiKey".
	APIKey string
	// AoyamaVersion is served as the latest web app version.
	AoyamaVersion  string
	MetricsEnabled bool
}

// Server wraps the fake routes and their in-memory state.
type Server struct {
	cfg      Config
	version  string
	log      zerolog.Logger
	registry *prometheus.Registry
	metrics  *metrics.ServerMetrics
	router   chi.Router

	mu       sync.Mutex
	sessions map[string]string // access token -> auth token
	orders   []map[string]any
	events   []string
}

// Option configures server construction.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) { s.log = logger }
}

// New constructs a fake API server.
func New(cfg Config, version string, opts ...Option) *Server {
	if cfg.APIKey == "" {
		cfg.APIKey = defaultAPIKey
	}
	if cfg.AoyamaVersion == "" {
		cfg.AoyamaVersion = defaultAoyamaVersion
	}
	s := &Server{
		cfg:      cfg,
		version:  version,
		log:      zerolog.Nop(),
		registry: prometheus.NewRegistry(),
		sessions: map[string]string{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("component", "fakeapi").Logger()
	s.metrics = metrics.NewServerMetrics(s.registry, "fakeapi")
	s.router = s.buildRouter()
	return s
}

// Router returns the configured router.
func (s *Server) Router() chi.Router {
	return s.router
}

// Orders returns the orders received so far.
func (s *Server) Orders() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.orders...)
}

// Events returns the names of the events received so far.
func (s *Server) Events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestSize(1 << 20))
	r.Use(s.metrics.Middleware)

	r.Group(func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/version", s.handleVersion)
		if s.cfg.MetricsEnabled {
			r.Method(http.MethodGet, "/metrics", metrics.Handler(s.registry))
		}
	})

	// api host
	r.Get(endpoint.PathStoreViewAPIKey+"{apiKey}", s.handleStore)
	r.Get(endpoint.PathStoreProducts+"{id}", s.handleStoreProduct)
	r.Post(endpoint.PathOrders, s.handleOrder)
	r.Post(endpoint.PathProductMetaDataHints, s.handleProductMetaDataHints)
	r.Post(endpoint.PathSessions, s.handleSessions)
	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)
		r.Delete(endpoint.PathUser, s.handleDeleteUser)
		r.Get(endpoint.PathUserProducts, s.fixtureHandler("user_products.json"))
		r.Get(endpoint.PathUserBodyMeasurements, s.fixtureHandler("user_body_profile.json"))
	})

	r.Route(api.PrefixServices, func(r chi.Router) {
		r.Get(endpoint.PathProductCheck, s.handleProductCheck)
		r.Get(endpoint.PathProductTypes, s.fixtureHandler("product_types.json"))
		r.Post(endpoint.PathGetSize, s.handleRecommendationV1)
	})
	r.Route(api.PrefixSizeRecommendation, func(r chi.Router) {
		r.Post(endpoint.PathGetSize, s.fixtureHandler("recommendation_v2.json"))
	})
	r.Post(api.PrefixEvents, s.handleEvent)
	r.Route(api.PrefixStatic, func(r chi.Router) {
		r.Get(endpoint.PathLatestAoyamaVersion, s.handleLatestAoyamaVersion)
	})
	r.Route(api.PrefixI18n, func(r chi.Router) {
		r.Get(endpoint.PathI18n+"{lang}", s.handleI18n)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		s.log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("route", route).
			Str("query", logging.Redact(r.URL.RawQuery)).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	})
}
