package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/zero-day-ai/propkit/store"

// Outcomes recorded on the operations counter.
const (
	outcomeOK       = "ok"
	outcomeNotFound = "not_found"
	outcomeError    = "error"
)

// instruments wraps every store call in a span and counts it.
type instruments struct {
	backend string
	tracer  trace.Tracer
	ops     metric.Int64Counter
	logger  *slog.Logger
}

func newInstruments(backend string, tp trace.TracerProvider, mp metric.MeterProvider, logger *slog.Logger) (*instruments, error) {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	if logger == nil {
		logger = slog.Default()
	}

	ops, err := mp.Meter(instrumentationName).Int64Counter(
		"propkit.store.operations",
		metric.WithDescription("Number of snapshot store operations"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create operations counter: %w", err)
	}

	return &instruments{
		backend: backend,
		tracer:  tp.Tracer(instrumentationName),
		ops:     ops,
		logger:  logger.With("backend", backend),
	}, nil
}

// start opens a span for op. The returned func ends it and records the
// outcome of err.
func (in *instruments) start(ctx context.Context, op, id string) (context.Context, func(error)) {
	ctx, span := in.tracer.Start(ctx, "store."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("store.backend", in.backend),
			attribute.String("store.id", id),
		),
	)

	return ctx, func(err error) {
		defer span.End()

		outcome := outcomeOK
		switch {
		case err == nil:
			span.SetStatus(codes.Ok, "")
		case errors.Is(err, ErrNotFound):
			outcome = outcomeNotFound
			span.SetStatus(codes.Error, err.Error())
		default:
			outcome = outcomeError
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		in.ops.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", op),
			attribute.String("backend", in.backend),
			attribute.String("outcome", outcome),
		))

		if outcome == outcomeError {
			in.logger.Warn("store operation failed",
				"operation", op,
				"id", id,
				"error", err)
			return
		}
		in.logger.Debug("store operation",
			"operation", op,
			"id", id,
			"outcome", outcome)
	}
}
