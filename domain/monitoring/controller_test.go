package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gazon-app/waitlist/config/router"
	"github.com/gazon-app/waitlist/internal/log"
	"github.com/gazon-app/waitlist/pkg/factory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

var healthy = pingerFunc(func(context.Context) error { return nil })

type healthEnvelope struct {
	Code    int          `json:"code"`
	Data    HealthStatus `json:"data"`
	Message string       `json:"message"`
}

func getHealth(t *testing.T, cache, store Pinger) (int, healthEnvelope) {
	t.Helper()

	logger := log.NewLoggerWithJSONOutput()
	rs := router.CreateRouterService(logger, nil, &router.RouterConfig{
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    5 * time.Second,
	})
	t.Cleanup(rs.Cleanup)

	limiters := factory.NewDefaultRateLimiterFactory(nil, logger)
	rs.MountController(NewMonitoringControllerFactory(nil, logger, cache, store, limiters).CreateController())

	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var envelope healthEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return w.Code, envelope
}

func TestHealthCheck_StoreHealthy(t *testing.T) {
	status, body := getHealth(t, healthy, healthy)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, body.Data.WaitlistStore)
	assert.Equal(t, 1, body.Data.Cache)
	assert.Equal(t, 0, body.Data.Database, "no database configured")
}

func TestHealthCheck_StoreDown(t *testing.T) {
	down := pingerFunc(func(context.Context) error { return errors.New("connection refused") })

	status, body := getHealth(t, nil, down)

	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, 0, body.Data.WaitlistStore)
	assert.Equal(t, 0, body.Data.Cache)
}

func TestHealthCheck_ProbeHasDeadline(t *testing.T) {
	var hadDeadline bool
	store := pingerFunc(func(ctx context.Context) error {
		_, hadDeadline = ctx.Deadline()
		return nil
	})

	status, _ := getHealth(t, nil, store)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, hadDeadline)
}
