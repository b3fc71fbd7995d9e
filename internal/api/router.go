package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/lagoulette/smartport/docs"
	"github.com/lagoulette/smartport/internal/api/handler"
	"github.com/lagoulette/smartport/internal/api/middleware"
	"github.com/lagoulette/smartport/internal/core/domain"
	"github.com/lagoulette/smartport/internal/core/ports"
)

// Deps are the collaborators the HTTP layer is built on.
type Deps struct {
	Identities ports.IdentityService
	Guard      ports.AccessGuard
	Tokens     ports.TokenIssuer

	// Store and StoreName feed the readiness probe.
	Store     handler.Pinger
	StoreName string
	// Redis is optional; nil when login throttling is disabled.
	Redis *redis.Client

	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// Each router gets its own registry for the HTTP metrics so that several
	// routers can coexist in one process.
	httpMetrics := prometheus.NewRegistry()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "smartport",
		Subsystem:  "http",
		Registerer: httpMetrics,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Identities)
	userHandler := handler.NewUserHandler(d.Identities)

	var rdb redis.Cmdable
	if d.Redis != nil {
		rdb = d.Redis
	}
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Store, d.StoreName, rdb)

	e.GET("/", handler.Home)

	// --- Identity routes ---
	users := e.Group("/users")
	users.POST("/register", authHandler.Register)
	users.POST("/login", authHandler.Login)

	// Attached per route: a group with middleware would answer unknown
	// /users paths with 401 instead of 404.
	adminOnly := []echo.MiddlewareFunc{
		middleware.Auth(d.Tokens),
		middleware.RequireRole(d.Guard, domain.RoleAdmin),
	}
	users.GET("/:id", userHandler.Get, adminOnly...)
	users.DELETE("/:id", userHandler.Delete, adminOnly...)
	users.PUT("/:id/role", userHandler.UpdateRole, adminOnly...)

	// --- Health probes (no auth required) ---
	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{httpMetrics, prometheus.DefaultGatherer},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			switch {
			case v.Status >= 500:
				evt = log.Error().Err(v.Error)
			case v.Status >= 400:
				evt = log.Warn()
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
