package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/fanvest/gateway/internal/api/handler"
	"github.com/fanvest/gateway/internal/api/middleware"
	"github.com/fanvest/gateway/internal/api/proxy"
	"github.com/fanvest/gateway/internal/core/ports"
	"github.com/fanvest/gateway/internal/infrastructure/config"
)

// RouterOptions carries the dependencies NewRouter wires together.
type RouterOptions struct {
	Config   *config.Config
	Verifier ports.TokenVerifier
	Redis    *redis.Client // nil disables cache-dependent probes
	Log      zerolog.Logger
	// Metrics registers the HTTP middleware and /metrics endpoint when
	// non-nil; tests pass nil to avoid duplicate registration.
	Metrics prometheus.Registerer
}

// NewRouter builds the Echo instance with every gateway route registered:
// the static file surface, the ops surface, and one proxy rule per backend
// prefix.
func NewRouter(opts RouterOptions) (*echo.Echo, error) {
	cfg := opts.Config

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Log, cfg.Uploads.PublicDir)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.Timing())
	e.Use(middleware.CORS(cfg.AllowedOrigins))
	if opts.Metrics != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Namespace:  "gateway",
			Registerer: opts.Metrics,
		}))
		e.GET("/metrics", echoprometheus.NewHandler())
	}

	// --- Static file surface ---
	fileHandler := handler.NewFileHandler(cfg.Uploads, opts.Log)
	e.GET("/file/:filename", fileHandler.Serve)
	e.POST("/file", fileHandler.Upload, middleware.APIKey(cfg.APIKey))

	// --- Ops surface ---
	targets, err := cfg.RouteTargets()
	if err != nil {
		return nil, err
	}
	e.GET("/", handler.NewHealthHandler().Liveness)
	statusHandler := handler.NewStatusHandler(targets, opts.Redis)
	e.GET("/internal/status", statusHandler.Readiness, middleware.APIKey(cfg.APIKey))

	// --- Proxy rules ---
	auth := middleware.Auth(opts.Verifier, opts.Log)
	for _, t := range targets {
		h := proxy.New(t.Prefix, t.Target, opts.Log).Handler()

		var mws []echo.MiddlewareFunc
		if t.RequiredRole != "" {
			mws = append(mws, auth, middleware.RequireRole(t.RequiredRole, t.RoleOverrides))
		}

		g := e.Group(t.Prefix, mws...)
		g.Any("", h)
		g.Any("/*", h)
	}

	return e, nil
}
