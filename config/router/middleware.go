package router

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gazon-app/waitlist/internal/log"
	"github.com/gin-gonic/gin"
)

const correlationIDHeader = "X-Correlation-ID"

const (
	corsAllowMethods = "GET, POST, PUT, OPTIONS"
	corsAllowHeaders = "Content-Type, Accept, Origin, X-Requested-With, " + correlationIDHeader
)

func (routerService *RouterService) correlationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(correlationIDHeader))
		if id == "" {
			id = log.GenerateCorrelationID()
		}
		c.Request = c.Request.WithContext(log.WithCorrelationID(c.Request.Context(), id))
		c.Header(correlationIDHeader, id)
		c.Next()
	}
}

func (routerService *RouterService) loggerInjectionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		c.Request = c.Request.WithContext(log.WithLogger(ctx, routerService.logger.WithCorrelationID(ctx)))
		c.Next()
	}
}

func (routerService *RouterService) requestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.GetLoggerInstanceFromContext(c.Request.Context(), routerService.logger).Info("HTTP request",
			"method", c.Request.Method,
			"route", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}

func (routerService *RouterService) securityHeadersMiddleware() gin.HandlerFunc {
	policy := routerService.policy

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if policy.hstsEnabled && isHTTPS(c) {
			h.Set("Strict-Transport-Security", policy.hstsHeader)
		}
		c.Next()
	}
}

// isHTTPS also trusts X-Forwarded-Proto for TLS terminated at a proxy.
func isHTTPS(c *gin.Context) bool {
	return c.Request.TLS != nil || strings.EqualFold(strings.TrimSpace(c.GetHeader("X-Forwarded-Proto")), "https")
}

func (routerService *RouterService) maxBodySizeMiddleware() gin.HandlerFunc {
	limit := routerService.policy.maxBodyBytes

	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				ErrorResult(http.StatusRequestEntityTooLarge, "Request payload too large", nil).ToJSON())
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

// corsMiddleware lets the landing page call the API from its own origin.
// Requests from other origins proceed without CORS headers, so browsers block them.
func (routerService *RouterService) corsMiddleware() gin.HandlerFunc {
	policy := routerService.policy
	if !policy.corsConfigured() {
		routerService.logger.Warn("CORS_ALLOWED_ORIGIN not set; cross-origin requests will be refused by browsers")
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if !policy.originAllowed(origin) {
			if origin != "" {
				routerService.logger.Warn("CORS origin not allowed", "origin", origin)
			}
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
		h.Set("Access-Control-Allow-Methods", corsAllowMethods)
		h.Add("Vary", "Origin")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// timeoutMiddleware puts a deadline on the request context. The chain still runs
// on the request goroutine because gin.Context is not safe for concurrent use.
func (routerService *RouterService) timeoutMiddleware() gin.HandlerFunc {
	timeout := routerService.requestTimeout

	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			routerService.logger.WithCorrelationID(ctx).Warn("Request timeout detected", "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusRequestTimeout,
				ErrorResult(http.StatusRequestTimeout, "Request timeout", nil).ToJSON())
		}
	}
}
