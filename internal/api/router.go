package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/sessionguard/auth-api/internal/api/docs"
	"github.com/sessionguard/auth-api/internal/api/handler"
	"github.com/sessionguard/auth-api/internal/api/middleware"
	"github.com/sessionguard/auth-api/internal/core/domain"
	"github.com/sessionguard/auth-api/internal/core/ports"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	AuthService  ports.AuthService
	Codec        ports.TokenCodec
	Store        ports.CredentialStore
	Ledger       ports.SessionLedger
	Catalog      ports.MessageCatalog
	HealthChecks map[string]handler.Check
	Logger       zerolog.Logger

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Catalog, deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: deps.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	e.Use(middleware.Locale(deps.Catalog))
	// logout succeeds whatever the bearer holds
	e.Use(middleware.Auth(deps.Codec, deps.Store, deps.Ledger, deps.Logger,
		middleware.WithSkipper(func(c echo.Context) bool {
			return c.Path() == "/auth/logout"
		}),
	))

	authHandler := handler.NewAuthHandler(deps.AuthService, deps.Catalog)
	accessHandler := handler.NewAccessHandler(deps.Catalog)
	healthHandler := handler.NewHealthHandler(deps.HealthChecks)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)
	e.GET("/auth/me", authHandler.Me, middleware.RequireRoles())

	// --- Role table routes ---
	test := e.Group("/test")
	test.GET("", accessHandler.Public)
	test.GET("/user", accessHandler.User, middleware.RequireRoles())
	test.GET("/manager", accessHandler.Manager, middleware.RequireRoles(domain.RoleAdmin, domain.RoleManager))
	test.GET("/admin", accessHandler.Admin, middleware.RequireRoles(domain.RoleAdmin))

	// --- Operations ---
	e.GET("/health", healthHandler.Liveness)        // liveness
	e.GET("/health/ready", healthHandler.Readiness) // readiness
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
