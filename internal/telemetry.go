package internal

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "elasticq"

type Telemetry struct {
	kind string
	name string

	l *Logger

	tracer trace.Tracer
	meter  metric.Meter
}

type TelemetryOption func(*Telemetry)

// WithMeterProvider makes the [Telemetry] use mp instead of the global meter provider.
func WithMeterProvider(mp metric.MeterProvider) TelemetryOption {
	return func(t *Telemetry) {
		t.meter = mp.Meter(instrumentationName)
	}
}

// WithTracerProvider makes the [Telemetry] use tp instead of the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) TelemetryOption {
	return func(t *Telemetry) {
		t.tracer = tp.Tracer(instrumentationName)
	}
}

// WithLogger replaces the default stderr logger.
func WithLogger(l *Logger) TelemetryOption {
	return func(t *Telemetry) {
		t.l = l
	}
}

func NewTelemetry(kind, name string, opts ...TelemetryOption) *Telemetry {
	t := &Telemetry{
		kind: kind,
		name: name,

		tracer: otel.GetTracerProvider().Tracer(instrumentationName),
		meter:  otel.GetMeterProvider().Meter(instrumentationName),
	}

	for _, opt := range opts {
		opt(t)
	}

	if t.l == nil {
		t.l = NewLogger(kind, name)
	}

	return t
}

func (t *Telemetry) Logger() *Logger {
	return t.l
}

func (t *Telemetry) LogDebug(msg string, args ...any) {
	t.l.Debug(msg, args...)
}

func (t *Telemetry) LogInfo(msg string, args ...any) {
	t.l.Info(msg, args...)
}

func (t *Telemetry) LogWarn(msg string, args ...any) {
	t.l.Warn(msg, args...)
}

func (t *Telemetry) LogError(msg string, err error, args ...any) {
	t.l.Error(msg, err, args...)
}

func (t *Telemetry) setDefaultAttributes(span trace.Span) {
	span.SetAttributes(
		attribute.String("elasticq.kind", t.kind),
		attribute.String("elasticq.name", t.name),
	)
}

func (t *Telemetry) NewTrace(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	ctx, span := t.tracer.Start(ctx, spanName, opts...)
	t.setDefaultAttributes(span)
	return ctx, span
}

// MetricName returns the fully qualified name of a metric owned by this [Telemetry].
func (t *Telemetry) MetricName(name string) string {
	return fmt.Sprintf("%s_%s_%s", t.kind, t.name, name)
}

// NewCounter registers a monotonic counter whose value is read from callback on every collection.
func (t *Telemetry) NewCounter(name string, callback func() int64) {
	counterName := t.MetricName(name)

	_, err := t.meter.Int64ObservableCounter(counterName,
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(callback())
			return nil
		}),
	)
	if err != nil {
		t.LogError("failed to create counter", err, "name", counterName)
		return
	}

	t.LogDebug("created counter", "name", counterName)
}

// NewGauge registers a gauge whose value is read from callback on every collection.
func (t *Telemetry) NewGauge(name string, callback func() int64) {
	gaugeName := t.MetricName(name)

	_, err := t.meter.Int64ObservableGauge(gaugeName,
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(callback())
			return nil
		}),
	)
	if err != nil {
		t.LogError("failed to create gauge", err, "name", gaugeName)
		return
	}

	t.LogDebug("created gauge", "name", gaugeName)
}
