package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gazon-app/waitlist/internal/log"
	apperrors "github.com/gazon-app/waitlist/pkg/errors"
	"github.com/gazon-app/waitlist/pkg/ratelimit"
	"github.com/gazon-app/waitlist/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const defaultAppPort = "8080"

// Cache is the part of the application cache the router needs.
type Cache interface {
	Ping(ctx context.Context) error
}

type redisClientProvider interface {
	GetClient() *redis.Client
}

type RouterService struct {
	engine          *gin.Engine
	server          *http.Server
	logger          *log.Logger
	policy          httpPolicy
	requestTimeout  time.Duration
	rateLimiter     ratelimit.RateLimiter
	metricsRegistry *prometheus.Registry

	handlerToControllerMap map[string]*RESTController
	rateLimitOverrides     map[string]ratelimit.RateLimiter
}

type RouterConfig struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RequestTimeout    time.Duration
}

// CreateRouterService builds the gin engine with the waitlist middleware chain.
// HTTP policy (proxies, CORS, HSTS, body limit) is read from the environment once, here.
func CreateRouterService(logger *log.Logger, cache Cache, routerConfig *RouterConfig) *RouterService {
	if mode := utils.GetEnvTrimmed("GIN_MODE"); mode != "" {
		logger.Info("Setting Gin mode", "mode", mode)
		gin.SetMode(mode)
	}

	rs := &RouterService{
		engine:                 gin.New(),
		logger:                 logger,
		policy:                 loadHTTPPolicy(),
		requestTimeout:         routerConfig.RequestTimeout,
		handlerToControllerMap: make(map[string]*RESTController),
		rateLimitOverrides:     make(map[string]ratelimit.RateLimiter),
	}

	engine := rs.engine
	engine.Use(gin.Recovery())

	if utils.IsTracingEnabled() {
		engine.Use(otelgin.Middleware(utils.OTelServiceName()))
		logger.Info("Tracing middleware enabled")
	}

	rs.applyTrustedProxies()
	rs.rateLimiter = newGlobalRateLimiter(logger, cache, routerConfig.RateLimitRequests, routerConfig.RateLimitWindow)

	// Routes registered here skip the middleware below, so /metrics is never rate limited.
	rs.mountMetrics()

	engine.Use(
		rs.securityHeadersMiddleware(),
		rs.maxBodySizeMiddleware(),
		rs.corsMiddleware(),
		rs.rateLimitMiddleware(),
		rs.timeoutMiddleware(),
		rs.correlationIDMiddleware(),
		rs.loggerInjectionMiddleware(),
		rs.requestLoggingMiddleware(),
	)

	engine.HandleMethodNotAllowed = true
	engine.RedirectTrailingSlash = true
	engine.NoRoute(rs.fallbackHandler(apperrors.StatusNotFound, "Route not found"))
	engine.NoMethod(rs.fallbackHandler(apperrors.StatusMethodNotAllowed, "Method not allowed"))

	// Handlers run on the request goroutine; the server timeouts bound them.
	rs.server = &http.Server{
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       routerConfig.RequestTimeout,
		WriteTimeout:      routerConfig.RequestTimeout,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("Router service initialized")
	return rs
}

func (routerService *RouterService) applyTrustedProxies() {
	proxies := routerService.policy.trustedProxies
	if err := routerService.engine.SetTrustedProxies(proxies); err != nil {
		routerService.logger.Error("Invalid TRUSTED_PROXIES; disabling trusted proxies", "error", err)
		_ = routerService.engine.SetTrustedProxies(nil)
		return
	}
	if proxies == nil {
		routerService.logger.Info("Trusted proxies disabled (TRUSTED_PROXIES not set)")
	}
}

func (routerService *RouterService) fallbackHandler(status int, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		routerService.logger.WithCorrelationID(c.Request.Context()).Error(message, "path", c.Request.URL.Path)
		c.JSON(status, ErrorResult(status, message, nil).ToJSON())
	}
}

// MetricsRegisterer is the registry served on /metrics. When metrics are
// disabled it is a private registry that is never exposed.
func (routerService *RouterService) MetricsRegisterer() prometheus.Registerer {
	if routerService.metricsRegistry == nil {
		routerService.metricsRegistry = prometheus.NewRegistry()
	}
	return routerService.metricsRegistry
}

func (routerService *RouterService) GetEngine() *gin.Engine {
	return routerService.engine
}

func (routerService *RouterService) GetLogger(c *RequestContext) *log.Logger {
	return routerService.logger.WithCorrelationID(c.Request.Context())
}

func (routerService *RouterService) Cleanup() {
	if routerService.rateLimiter != nil {
		if err := routerService.rateLimiter.Close(); err != nil {
			routerService.logger.Error("Failed to close rate limiter", "error", err)
		}
	}
	routerService.logger.Info("Router service cleanup completed")
}

func (routerService *RouterService) MountController(controller *RESTController) {
	controller.prepare(routerService, controller)

	routerService.logger.Info("Controller mounted",
		"name", controller.name,
		"path", controller.mountPoint,
		"version", controller.version,
		"handlers", controller.handlerCount,
	)
}

func (routerService *RouterService) RunHTTPServer() error {
	routerService.server.Addr = ":" + utils.GetEnvTrimmedOrDefault("APP_PORT", defaultAppPort)
	routerService.logger.Info("Starting HTTP server", "addr", routerService.server.Addr)

	err := routerService.server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		routerService.logger.Error("HTTP server stopped", "error", err)
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

func (routerService *RouterService) Shutdown(ctx context.Context) error {
	routerService.logger.Info("Shutting down HTTP server gracefully")
	return routerService.server.Shutdown(ctx)
}
