package observability

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/apiwrap/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter installs a global meter provider exporting over OTLP HTTP.
// Shut the provider down on exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments recorded by wrapper executors.
// All methods are safe to call on a nil *Metrics.
type Metrics struct {
	requestTotal    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestActive   metric.Int64UpDownCounter
	refreshTotal    metric.Int64Counter
	throttleDelay   metric.Float64Histogram
	errorTotal      metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	requestTotal, err := meter.Int64Counter("apiwrap.request.total",
		metric.WithDescription("Total number of API requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating apiwrap.request.total counter: %w", err)
	}

	requestDuration, err := meter.Float64Histogram("apiwrap.request.duration",
		metric.WithDescription("Duration of API requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating apiwrap.request.duration histogram: %w", err)
	}

	requestActive, err := meter.Int64UpDownCounter("apiwrap.request.active",
		metric.WithDescription("Number of in-flight API requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating apiwrap.request.active gauge: %w", err)
	}

	refreshTotal, err := meter.Int64Counter("apiwrap.refresh.total",
		metric.WithDescription("Authentication refresh attempts by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating apiwrap.refresh.total counter: %w", err)
	}

	throttleDelay, err := meter.Float64Histogram("apiwrap.throttle.delay",
		metric.WithDescription("Pauses taken because of rate-limit headers"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating apiwrap.throttle.delay histogram: %w", err)
	}

	errorTotal, err := meter.Int64Counter("apiwrap.error.total",
		metric.WithDescription("Failed API calls by error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating apiwrap.error.total counter: %w", err)
	}

	return &Metrics{
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestActive:   requestActive,
		refreshTotal:    refreshTotal,
		throttleDelay:   throttleDelay,
		errorTotal:      errorTotal,
	}, nil
}

// RecordRequestStart increments the in-flight request count.
func (m *Metrics) RecordRequestStart(ctx context.Context) {
	if m == nil {
		return
	}
	m.requestActive.Add(ctx, 1)
}

// RecordRequestEnd decrements in-flight requests and records the completed request.
// A zero status means no response was received.
func (m *Metrics) RecordRequestEnd(ctx context.Context, resource, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestActive.Add(ctx, -1)
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("resource", resource),
		attribute.String("method", method),
		attribute.String("status", strconv.Itoa(status)),
	))
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("resource", resource),
		attribute.String("method", method),
	))
}

// RecordRefresh records an authentication refresh and whether it produced
// new credentials.
func (m *Metrics) RecordRefresh(ctx context.Context, resource string, refreshed bool) {
	if m == nil {
		return
	}
	m.refreshTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("resource", resource),
		attribute.Bool("refreshed", refreshed),
	))
}

// RecordThrottle records a pause taken before the next request.
func (m *Metrics) RecordThrottle(ctx context.Context, resource string, delay time.Duration) {
	if m == nil {
		return
	}
	m.throttleDelay.Record(ctx, delay.Seconds(), metric.WithAttributes(
		attribute.String("resource", resource),
	))
}

// RecordError records a failed call by error code.
func (m *Metrics) RecordError(ctx context.Context, code, resource string) {
	if m == nil {
		return
	}
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("resource", resource),
	))
}
