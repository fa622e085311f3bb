package factory

import (
	"time"

	"github.com/gazon-app/waitlist/pkg/ratelimit"
	"github.com/go-redis/redis/v8"
)

type RedisClientProvider interface {
	GetClient() *redis.Client
}

type RateLimiterFactory interface {
	// CreateRateLimiter builds a limiter whose Redis counters live under "ratelimit:<name>:".
	CreateRateLimiter(name string, requests int, window time.Duration) ratelimit.RateLimiter
}

type DefaultRateLimiterFactory struct {
	redis  *redis.Client
	logger ratelimit.Logger
}

// NewDefaultRateLimiterFactory falls back to in-memory limiters when cache does not expose a Redis client.
func NewDefaultRateLimiterFactory(cache any, logger ratelimit.Logger) *DefaultRateLimiterFactory {
	var redisClient *redis.Client
	if provider, ok := cache.(RedisClientProvider); ok && provider != nil {
		redisClient = provider.GetClient()
	}

	return &DefaultRateLimiterFactory{redis: redisClient, logger: logger}
}

func (f *DefaultRateLimiterFactory) CreateRateLimiter(name string, requests int, window time.Duration) ratelimit.RateLimiter {
	return ratelimit.NewRateLimiter(&ratelimit.RateLimitConfig{
		Requests:  requests,
		Window:    window,
		Redis:     f.redis,
		Logger:    f.logger,
		KeyPrefix: "ratelimit:" + name + ":",
	})
}

func (f *DefaultRateLimiterFactory) UsesRedis() bool {
	return f.redis != nil
}
