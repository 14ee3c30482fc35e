package icclu

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("icclu")
	meter  = otel.Meter("icclu")
)

var (
	buildTotal   metric.Int64Counter
	buildFailed  metric.Int64Counter
	buildLatency metric.Float64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics creates the meter instruments. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		buildTotal, err = meter.Int64Counter(
			"icclu_build_total",
			metric.WithDescription("Total lookup object builds"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		buildFailed, err = meter.Int64Counter(
			"icclu_build_failed_total",
			metric.WithDescription("Lookup object builds that returned an error"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		buildLatency, err = meter.Float64Histogram(
			"icclu_build_duration_seconds",
			metric.WithDescription("Duration of lookup object builds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func startBuildSpan(ctx context.Context, h Header, fn Func, intent Intent, order Order) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Builder.Build",
		trace.WithAttributes(
			attribute.String("icc.class", h.Class.String()),
			attribute.String("icc.colorspace", h.ColorSpace.String()),
			attribute.String("icc.pcs", h.PCS.String()),
			attribute.String("icc.func", fn.String()),
			attribute.String("icc.intent", intent.String()),
			attribute.String("icc.order", order.String()),
		),
	)
}

func setBuildSpanResult(span trace.Span, tag TagSig, steps int) {
	span.SetAttributes(
		attribute.String("icc.tag", tag.String()),
		attribute.Int("icc.steps", steps),
	)
}

func recordBuildMetrics(ctx context.Context, class ProfileClass, fn Func, d time.Duration, err error) {
	if initMetrics() != nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("class", class.String()),
		attribute.String("func", fn.String()),
	)
	buildTotal.Add(ctx, 1, attrs)
	buildLatency.Record(ctx, d.Seconds(), attrs)
	if err != nil {
		buildFailed.Add(ctx, 1, attrs)
	}
}
