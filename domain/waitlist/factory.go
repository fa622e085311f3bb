package waitlist

import (
	"fmt"
	"strings"
	"time"

	"github.com/gazon-app/waitlist/config/router"
	"github.com/gazon-app/waitlist/internal/log"
	"github.com/gazon-app/waitlist/pkg/constants"
	"github.com/gazon-app/waitlist/pkg/factory"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const (
	BackendSQL   = "sql"
	BackendRedis = "redis"
)

type Settings struct {
	Backend                 string
	SessionTTL              time.Duration
	SignupRequestsPerMinute int
	Breaker                 BreakerConfig
}

func DefaultSettings() Settings {
	return Settings{
		Backend:                 BackendSQL,
		SessionTTL:              constants.DefaultSessionTTL,
		SignupRequestsPerMinute: constants.DefaultSignupRequestsPerMinute,
		Breaker: BreakerConfig{
			FailureThreshold: constants.DefaultBreakerFailures,
			RecoveryTimeout:  constants.DefaultBreakerRecovery,
		},
	}
}

type WaitlistServiceFactory interface {
	CreateStore() (WaitlistStore, error)
	CreateController(store WaitlistStore) *router.RESTController
}

type DefaultWaitlistServiceFactory struct {
	db       *gorm.DB
	redis    *redis.Client
	logger   *log.Logger
	limiters factory.RateLimiterFactory
	metrics  *Metrics
	settings Settings
}

func NewWaitlistServiceFactory(
	db *gorm.DB,
	redisClient *redis.Client,
	logger *log.Logger,
	limiters factory.RateLimiterFactory,
	metrics *Metrics,
	settings Settings,
) WaitlistServiceFactory {
	return &DefaultWaitlistServiceFactory{
		db:       db,
		redis:    redisClient,
		logger:   logger,
		limiters: limiters,
		metrics:  metrics,
		settings: settings,
	}
}

// CreateStore builds the backend and wraps it as breaker(instrumented(backend)).
func (f *DefaultWaitlistServiceFactory) CreateStore() (WaitlistStore, error) {
	backend := strings.ToLower(strings.TrimSpace(f.settings.Backend))
	if backend == "" {
		backend = BackendSQL
	}

	var store WaitlistStore
	switch backend {
	case BackendSQL:
		if f.db == nil {
			return nil, fmt.Errorf("waitlist: %s backend requires a database", backend)
		}
		store = NewSQLStore(NewWaitlistRepository(f.db))
	case BackendRedis:
		if f.redis == nil {
			return nil, fmt.Errorf("waitlist: %s backend requires a configured Redis cache", backend)
		}
		store = NewRedisStore(f.redis, DefaultRedisKey)
	default:
		return nil, fmt.Errorf("waitlist: unknown store backend %q", f.settings.Backend)
	}

	f.logger.Info("Waitlist store initialized", "backend", backend)

	store = NewInstrumentedStore(store, backend, f.metrics)
	if f.settings.Breaker.FailureThreshold > 0 {
		store = NewBreakerStore(store, f.settings.Breaker, f.logger, f.metrics)
	}

	return store, nil
}

func (f *DefaultWaitlistServiceFactory) CreateController(store WaitlistStore) *router.RESTController {
	return NewWaitlistController(store, f.logger, f.limiters, f.metrics, f.settings)
}
