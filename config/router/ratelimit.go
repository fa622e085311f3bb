package router

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gazon-app/waitlist/internal/log"
	"github.com/gazon-app/waitlist/pkg/ratelimit"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// newGlobalRateLimiter prefers Redis so limits hold across replicas, and falls back
// to memory when the cache has no Redis client or does not answer.
func newGlobalRateLimiter(logger *log.Logger, cache Cache, requests int, window time.Duration) ratelimit.RateLimiter {
	var client *redis.Client
	if provider, ok := cache.(redisClientProvider); ok {
		client = provider.GetClient()
	}

	if client != nil {
		if err := client.Ping(context.Background()).Err(); err != nil {
			logger.Warn("Redis unavailable for rate limiting, using in-memory limiter", "error", err)
			client = nil
		}
	}

	backend := "memory"
	if client != nil {
		backend = "redis"
	}
	logger.Info("Rate limiting initialized", "backend", backend, "requests", requests, "window", window)

	return ratelimit.NewRateLimiter(&ratelimit.RateLimitConfig{
		Requests: requests,
		Window:   window,
		Redis:    client,
		Logger:   logger,
	})
}

// rateLimitMiddleware applies the handler's own limiter when one was registered,
// otherwise the global one. Unmatched paths get the global limiter and then reach
// the NoRoute/NoMethod handlers. Limiter errors let the request through.
func (routerService *RouterService) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := routerService.rateLimiter

		if route := c.FullPath(); route != "" {
			handlerKey := routerService.keyForPathAndMethod(route, c.Request.Method)
			if controller := routerService.handlerToControllerMap[handlerKey]; controller == nil {
				routerService.logger.Error("Request reached a route without a mounted controller", "path", c.Request.URL.Path, "method", c.Request.Method)
				c.AbortWithStatusJSON(http.StatusNotFound,
					NotFoundResult(fmt.Sprintf("There is no handler configured to handle any resource at the path %s", c.Request.URL.Path)).ToJSON())
				return
			}
			if override, ok := routerService.rateLimitOverrides[handlerKey]; ok {
				limiter = override
			}
		}
		if limiter == nil {
			c.Next()
			return
		}

		clientIP := c.ClientIP()
		limit, window := limiter.GetLimitDetails()
		setRateLimitHeaders(c, limit, window)

		limited, err := limiter.IsLimited(c.Request.Context(), "ratelimit:"+clientIP)
		if err != nil {
			routerService.logger.Error("Rate limiter error", "error", err, "client_ip", clientIP)
			c.Next()
			return
		}
		if !limited {
			c.Next()
			return
		}

		retryAfter := strconv.Itoa(retryAfterSeconds(window))
		routerService.logger.Warn("Rate limit exceeded", "client_ip", clientIP, "route", c.FullPath())
		c.Header("Retry-After", retryAfter)
		c.AbortWithStatusJSON(http.StatusTooManyRequests, TooManyRequestsResult(RateLimitResponse{
			Limit:      limit,
			Window:     window.String(),
			RetryAfter: retryAfter,
		}).ToJSON())
	}
}

func setRateLimitHeaders(c *gin.Context, limit int, window time.Duration) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Header("X-RateLimit-Window", window.String())
}

func retryAfterSeconds(window time.Duration) int {
	return max(1, int(math.Ceil(window.Seconds())))
}
