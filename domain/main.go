package domain

import (
	"github.com/gazon-app/waitlist/config"
	"github.com/gazon-app/waitlist/domain/monitoring"
	"github.com/gazon-app/waitlist/domain/waitlist"
	"github.com/gazon-app/waitlist/pkg/factory"
)

func SetupCoreDomain(appConfig *config.ApplicationConfig) error {
	rs := appConfig.RouterService
	limiters := factory.NewDefaultRateLimiterFactory(appConfig.Cache, appConfig.Logger)
	if appConfig.Logger != nil {
		backend := "memory"
		if limiters.UsesRedis() {
			backend = "redis"
		}
		appConfig.Logger.Info("Rate limiters configured", "backend", backend)
	}
	metrics := waitlist.NewMetrics(rs.MetricsRegisterer())

	waitlistFactory := waitlist.NewWaitlistServiceFactory(
		appConfig.DB,
		config.GetRedisClient(appConfig.Cache),
		appConfig.Logger,
		limiters,
		metrics,
		waitlistSettings(appConfig.Config),
	)

	store, err := waitlistFactory.CreateStore()
	if err != nil {
		return err
	}

	var cache monitoring.Pinger
	if appConfig.Cache != nil {
		cache = appConfig.Cache
	}

	rs.MountController(monitoring.NewMonitoringControllerFactory(appConfig.DB, appConfig.Logger, cache, store, limiters).CreateController())
	rs.MountController(waitlistFactory.CreateController(store))

	return nil
}

func waitlistSettings(cfg *config.AppConfig) waitlist.Settings {
	settings := waitlist.DefaultSettings()
	if cfg == nil {
		return settings
	}

	wc := cfg.Waitlist
	if wc.Store != "" {
		settings.Backend = wc.Store
	}
	if wc.SessionTTL > 0 {
		settings.SessionTTL = wc.SessionTTL
	}
	if wc.SignupRequestsPerMinute > 0 {
		settings.SignupRequestsPerMinute = wc.SignupRequestsPerMinute
	}
	settings.Breaker = waitlist.BreakerConfig{
		FailureThreshold: wc.BreakerFailures,
		RecoveryTimeout:  wc.BreakerRecovery,
	}

	return settings
}
