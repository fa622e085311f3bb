package waitlist

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/gazon-app/waitlist/domain/waitlist"

const outcomeFailure = "failure"

type instrumentedStore struct {
	next    WaitlistStore
	backend string
	tracer  trace.Tracer
	metrics *Metrics
}

// NewInstrumentedStore wraps next with a span per insert and outcome metrics.
// The email never leaves this function as a span attribute or label.
func NewInstrumentedStore(next WaitlistStore, backend string, metrics *Metrics) WaitlistStore {
	return &instrumentedStore{
		next:    next,
		backend: backend,
		tracer:  otel.Tracer(tracerName),
		metrics: metrics,
	}
}

func (s *instrumentedStore) Insert(ctx context.Context, email string) (InsertOutcome, error) {
	ctx, span := s.tracer.Start(ctx, "waitlist.store.insert",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("waitlist.store.backend", s.backend)),
	)
	defer span.End()

	start := time.Now()
	outcome, err := s.next.Insert(ctx, email)
	elapsed := time.Since(start)

	label := outcome.String()
	if err != nil {
		label = outcomeFailure
		span.RecordError(err)
		span.SetStatus(codes.Error, "waitlist insert failed")
	}
	span.SetAttributes(attribute.String("waitlist.outcome", label))

	if s.metrics != nil {
		s.metrics.storeInserts.WithLabelValues(label).Inc()
		s.metrics.storeDuration.WithLabelValues(label).Observe(elapsed.Seconds())
	}

	return outcome, err
}

func (s *instrumentedStore) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}
