package monitoring

import (
	"context"
	"net/http"
	"time"

	"github.com/gazon-app/waitlist/config/router"
	"github.com/gazon-app/waitlist/internal/log"
	"github.com/gazon-app/waitlist/pkg/factory"
	"gorm.io/gorm"
)

const (
	monitoringRequestsPerMinute = 10 // More restrictive than default 100
	healthCheckTimeout          = 2 * time.Second
)

// Pinger is satisfied by the cache and by the waitlist store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthStatus struct {
	Database      int `json:"database"`       // 1 = healthy, 0 = unhealthy
	Cache         int `json:"cache"`          // 1 = healthy, 0 = unhealthy/not configured
	WaitlistStore int `json:"waitlist_store"` // 1 = healthy, 0 = unhealthy
	Uptime        int `json:"uptime"`         // uptime in seconds
}

// Healthy reports whether signups can currently be accepted. The cache is optional.
func (s HealthStatus) Healthy() bool {
	return s.WaitlistStore == 1
}

type MonitoringController struct {
	db        *gorm.DB
	logger    *log.Logger
	cache     Pinger
	store     Pinger
	startTime time.Time
}

func NewMonitoringController(db *gorm.DB, logger *log.Logger, cache Pinger, store Pinger, limiters factory.RateLimiterFactory) *router.RESTController {
	ctrl := &MonitoringController{
		db:        db,
		logger:    logger,
		cache:     cache,
		store:     store,
		startTime: time.Now(),
	}

	return router.NewRESTController(
		"MonitoringController",
		"/",
		func(routerService *router.RouterService, controller *router.RESTController) {

			monitoringRateLimiter := limiters.CreateRateLimiter("monitoring", monitoringRequestsPerMinute, time.Minute)

			routerService.AddGetHandler(controller, monitoringRateLimiter, "", func(c *router.RequestContext) *router.ServiceResult {
				return ctrl.monitor(c)
			})

			routerService.AddGetHandler(controller, monitoringRateLimiter, "health", func(c *router.RequestContext) *router.ServiceResult {
				return ctrl.healthCheck(routerService, c)
			})
		},
	)
}

func (ctrl *MonitoringController) healthCheck(
	routerService *router.RouterService,
	c *router.RequestContext,
) *router.ServiceResult {
	logger := routerService.GetLogger(c)
	logger.Info("Health check endpoint called")

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	healthStatus := ctrl.performHealthChecks(ctx, logger)

	if !healthStatus.Healthy() {
		return router.ErrorResult(http.StatusServiceUnavailable, "waitlist health check failed", healthStatus)
	}

	return router.OKResult(healthStatus, "waitlist health check completed")
}

func (ctrl *MonitoringController) monitor(
	c *router.RequestContext,
) *router.ServiceResult {
	return router.OKResult("Monitoring endpoint is operational.", "Monitoring successful")
}

func (ctrl *MonitoringController) performHealthChecks(ctx context.Context, logger *log.Logger) HealthStatus {
	status := HealthStatus{
		Uptime: int(time.Since(ctrl.startTime).Seconds()),
	}

	status.Database = probe(ctx, logger, "Database", ctrl.checkDatabase)
	status.WaitlistStore = probe(ctx, logger, "Waitlist store", ctrl.checkStore)

	if ctrl.cache != nil {
		status.Cache = probe(ctx, logger, "Cache", ctrl.checkCache)
	} else {
		logger.Info("Cache not configured, cache health check skipped")
	}

	return status
}

func probe(ctx context.Context, logger *log.Logger, name string, check func(context.Context) error) int {
	if err := check(ctx); err != nil {
		logger.Error(name+" health check failed", "error", err)
		return 0
	}
	logger.Info(name + " health check passed")
	return 1
}

func (ctrl *MonitoringController) checkDatabase(ctx context.Context) error {
	if ctrl.db == nil {
		return errNotConfigured
	}

	sqlDB, err := ctrl.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

func (ctrl *MonitoringController) checkStore(ctx context.Context) error {
	if ctrl.store == nil {
		return errNotConfigured
	}
	return ctrl.store.Ping(ctx)
}

func (ctrl *MonitoringController) checkCache(ctx context.Context) error {
	return ctrl.cache.Ping(ctx)
}
