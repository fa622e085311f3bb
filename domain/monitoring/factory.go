package monitoring

import (
	"errors"

	"github.com/gazon-app/waitlist/config/router"
	"github.com/gazon-app/waitlist/internal/log"
	"github.com/gazon-app/waitlist/pkg/factory"
	"gorm.io/gorm"
)

var errNotConfigured = errors.New("not configured")

type MonitoringControllerFactory interface {
	CreateController() *router.RESTController
}

type DefaultMonitoringControllerFactory struct {
	db       *gorm.DB
	logger   *log.Logger
	cache    Pinger
	store    Pinger
	limiters factory.RateLimiterFactory
}

func NewMonitoringControllerFactory(db *gorm.DB, logger *log.Logger, cache Pinger, store Pinger, limiters factory.RateLimiterFactory) MonitoringControllerFactory {
	return &DefaultMonitoringControllerFactory{
		db:       db,
		logger:   logger,
		cache:    cache,
		store:    store,
		limiters: limiters,
	}
}

func (f *DefaultMonitoringControllerFactory) CreateController() *router.RESTController {
	return NewMonitoringController(f.db, f.logger, f.cache, f.store, f.limiters)
}
