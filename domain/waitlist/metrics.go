package waitlist

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the waitlist collectors; a nil *Metrics disables recording.
type Metrics struct {
	storeInserts   *prometheus.CounterVec
	storeDuration  *prometheus.HistogramVec
	notifications  *prometheus.CounterVec
	submissions    *prometheus.CounterVec
	breakerState   prometheus.Gauge
	activeSessions prometheus.Gauge
}

// NewMetrics registers on reg, reusing collectors that are already registered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		storeInserts: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "waitlist_store_inserts_total",
				Help: "Waitlist store insert attempts by outcome.",
			},
			[]string{"outcome"},
		)),
		storeDuration: register(reg, prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "waitlist_store_insert_duration_seconds",
				Help:    "Waitlist store insert latency in seconds.",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"outcome"},
		)),
		notifications: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "waitlist_notifications_total",
				Help: "User-facing signup notifications by kind.",
			},
			[]string{"kind"},
		)),
		submissions: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "waitlist_submissions_total",
				Help: "Signup submissions by final status.",
			},
			[]string{"status"},
		)),
		breakerState: register(reg, prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "waitlist_store_breaker_state",
				Help: "Waitlist store circuit breaker state (0=closed, 1=open, 2=half-open).",
			},
		)),
		activeSessions: register(reg, prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "waitlist_signup_sessions",
				Help: "Signup sessions currently held in memory.",
			},
		)),
	}
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *Metrics) observeSubmission(status SubmitStatus) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(status.String()).Inc()
}

func (m *Metrics) observeNotification(kind NotificationKind) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) setSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}
