package wrapper

import (
	"context"
	"net/http"
	"testing"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/apiwrap/observability"
	"github.com/kbukum/apiwrap/testutil"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func sumOf(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("%s is %T", name, m.Data)
			}
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestExecutor_SpansAndMetrics(t *testing.T) {
	sr := withRecorder(t)
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	metrics, err := observability.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	c, _, api := newTester(t, WithRefreshTokenByDefault(true), WithMetrics(metrics))
	api.Sequence(http.MethodGet, "/test/",
		testutil.Reply{Status: http.StatusUnauthorized},
		testutil.Reply{Status: http.StatusOK},
	)
	if _, err := mustCall(t, mustAttr(t, c, "test"), nil).Get(context.Background()); err != nil {
		t.Fatalf("Get: %v", err)
	}

	counts := map[string]int{}
	retried := 0
	for _, s := range sr.Ended() {
		counts[s.Name()]++
		if s.Name() != observability.SpanCall {
			continue
		}
		for _, kv := range s.Attributes() {
			if kv.Key == observability.AttrRetry && kv.Value.AsBool() {
				retried++
			}
			if kv.Key == observability.AttrResource && kv.Value.AsString() != "test" {
				t.Errorf("resource attribute = %v", kv.Value.Emit())
			}
		}
	}
	if counts[observability.SpanCall] != 2 || counts[observability.SpanRefresh] != 1 || counts[observability.SpanHTTPRequest] != 2 {
		t.Errorf("spans = %v", counts)
	}
	if retried != 1 {
		t.Errorf("expected one retry span, got %d", retried)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if got := sumOf(t, rm, "apiwrap.request.total"); got != 2 {
		t.Errorf("request.total = %d", got)
	}
	if got := sumOf(t, rm, "apiwrap.refresh.total"); got != 1 {
		t.Errorf("refresh.total = %d", got)
	}
	if got := sumOf(t, rm, "apiwrap.error.total"); got != 1 {
		t.Errorf("error.total = %d", got)
	}
}
