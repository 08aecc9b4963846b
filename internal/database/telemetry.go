package database

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/saltyorg/userstore/internal/users"
)

type metrics struct {
	queryCount    metric.Int64Counter
	queryDuration metric.Float64Histogram
	queryErrors   metric.Int64Counter
}

func newMetrics(meter metric.Meter) *metrics {
	queryCount, _ := meter.Int64Counter("userstore.db.query.count",
		metric.WithDescription("Total number of SQL statements executed"),
		metric.WithUnit("{query}"),
	)

	queryDuration, _ := meter.Float64Histogram("userstore.db.query.duration",
		metric.WithDescription("Statement execution duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000),
	)

	queryErrors, _ := meter.Int64Counter("userstore.db.query.errors",
		metric.WithDescription("Total number of failed statements"),
		metric.WithUnit("{error}"),
	)

	return &metrics{
		queryCount:    queryCount,
		queryDuration: queryDuration,
		queryErrors:   queryErrors,
	}
}

// observe runs fn inside a span, applies the query timeout and records metrics.
// A not-found result is not counted as an error.
func (db *DB) observe(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, span := db.tracer.Start(ctx, "users."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "sqlite"),
			attribute.String("db.operation", op),
		),
	)
	defer span.End()

	queryCtx := ctx
	if db.timeout > 0 {
		var cancel context.CancelFunc
		queryCtx, cancel = context.WithTimeout(ctx, db.timeout)
		defer cancel()
	}

	start := time.Now()
	err := fn(queryCtx)
	elapsed := time.Since(start)

	attrs := metric.WithAttributes(attribute.String("db.operation", op))
	db.metrics.queryCount.Add(ctx, 1, attrs)
	db.metrics.queryDuration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)

	if err != nil && !errors.Is(err, users.ErrNotFound) {
		db.metrics.queryErrors.Add(ctx, 1, attrs)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	log.Trace().Str("op", op).Dur("duration", elapsed).Err(err).Msg("Statement finished")

	return err
}
