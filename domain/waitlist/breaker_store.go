package waitlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gazon-app/waitlist/internal/log"
	"github.com/gazon-app/waitlist/pkg/circuitbreaker"
)

type BreakerConfig struct {
	FailureThreshold int
	RecoveryTimeout  time.Duration
}

type breakerStore struct {
	next    WaitlistStore
	breaker circuitbreaker.CircuitBreaker
}

// NewBreakerStore fails fast with ErrStoreUnavailable while the store keeps failing.
// Each Insert still reaches the store at most once.
func NewBreakerStore(next WaitlistStore, cfg BreakerConfig, logger *log.Logger, metrics *Metrics) WaitlistStore {
	return &breakerStore{
		next: next,
		breaker: circuitbreaker.NewCircuitBreaker(&circuitbreaker.Config{
			FailureThreshold: cfg.FailureThreshold,
			RecoveryTimeout:  cfg.RecoveryTimeout,
			SuccessThreshold: 1,
			// A caller that gave up says nothing about the store's health, so
			// it neither trips nor closes the circuit.
			IsFailure: func(err error) bool {
				return !errors.Is(err, context.Canceled)
			},
			OnStateChange: func(from, to circuitbreaker.CircuitState) {
				if logger != nil {
					logger.Warn("Waitlist store circuit breaker changed state", "from", from.String(), "to", to.String())
				}
				if metrics != nil {
					metrics.breakerState.Set(breakerGaugeValue(to))
				}
			},
		}),
	}
}

func (s *breakerStore) Insert(ctx context.Context, email string) (InsertOutcome, error) {
	var outcome InsertOutcome

	err := s.breaker.Call(func() error {
		var err error
		outcome, err = s.next.Insert(ctx, email)
		return err
	})
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return 0, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	return outcome, err
}

// Ping reports the store as unavailable while the circuit is open and the
// recovery timeout has not elapsed, since signups fail fast in that window.
func (s *breakerStore) Ping(ctx context.Context) error {
	if m := s.breaker.Metrics(); m.State == circuitbreaker.Open && time.Now().Before(m.NextAttempt) {
		return fmt.Errorf("%w: %w (retry after %s)", ErrStoreUnavailable, circuitbreaker.ErrCircuitOpen, m.NextAttempt.UTC().Format(time.RFC3339))
	}
	return s.next.Ping(ctx)
}

func breakerGaugeValue(state circuitbreaker.CircuitState) float64 {
	switch state {
	case circuitbreaker.Open:
		return 1
	case circuitbreaker.HalfOpen:
		return 2
	default:
		return 0
	}
}
