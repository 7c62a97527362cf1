package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/CarlosMilan/Challenge-BCI/pkg/health"
	"github.com/CarlosMilan/Challenge-BCI/pkg/middleware"
)

// RouterConfig carries the collaborators of NewRouter.
type RouterConfig struct {
	Users      UserService
	Health     *health.Handler
	Metrics    *middleware.HTTPMetrics
	Gatherer   prometheus.Gatherer
	CORS       middleware.CORSConfig
	PprofCIDRs []string
	Logger     *slog.Logger
}

// NewRouter creates a chi router with all user service routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.Tracing())
	r.Use(middleware.RequestLogger(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	r.Use(middleware.CORS(cfg.CORS))

	// Health check and metrics endpoints
	if cfg.Health != nil {
		r.Get("/health/live", cfg.Health.LivenessHandler())
		r.Get("/health/ready", cfg.Health.ReadinessHandler())
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	middleware.RegisterPprof(r, cfg.PprofCIDRs, cfg.Logger)

	userHandler := NewUserHandler(cfg.Users, cfg.Logger)
	r.Route("/users", func(r chi.Router) {
		r.With(ContentTypeJSON).Post("/sing-up", userHandler.SignUp)
		r.Get("/login", userHandler.Login)
	})

	return r
}
