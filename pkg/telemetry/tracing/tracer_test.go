package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/amebel/hyperon-experimental/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		config      *config.TracingConfig
		wantErr     bool
		wantEnabled bool
	}{
		{name: "nil config", wantErr: true},
		{name: "disabled tracing", config: &config.TracingConfig{ServiceName: "test"}},
		{
			name: "enabled with lazy connection",
			config: &config.TracingConfig{
				Enabled:     true,
				Sampler:     SamplerAlways,
				Endpoint:    "localhost:4317",
				ServiceName: "test",
				OTLP:        config.OTLPConfig{Insecure: true, Timeout: time.Second},
			},
			wantEnabled: true,
		},
		{
			name: "enabled with bad sampler",
			config: &config.TracingConfig{
				Enabled:  true,
				Sampler:  "sometimes",
				Endpoint: "localhost:4317",
				OTLP:     config.OTLPConfig{Insecure: true},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer, err := New(context.Background(), tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()
				_ = tracer.Shutdown(ctx)
			}()

			if tracer.Enabled() != tt.wantEnabled {
				t.Errorf("Enabled() = %v, want %v", tracer.Enabled(), tt.wantEnabled)
			}
			_, span := tracer.Start(context.Background(), "noop")
			span.End()
		})
	}
}

func newRecordingTracer(t *testing.T, sampler string, ratio float64) (*Tracer, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := NewWithExporter(&config.TracingConfig{
		Enabled:     true,
		Sampler:     sampler,
		SampleRatio: ratio,
		ServiceName: "test",
	}, exporter)
	if err != nil {
		t.Fatalf("NewWithExporter() error = %v", err)
	}
	t.Cleanup(func() { _ = tracer.Shutdown(context.Background()) })
	return tracer, exporter
}

func TestTracer_RecordsSpans(t *testing.T) {
	tracer, exporter := newRecordingTracer(t, SamplerAlways, 0)

	ctx, parent := tracer.Start(context.Background(), "runner.run")
	_, child := tracer.Start(ctx, "runner.evaluate",
		trace.WithAttributes(AttrAtom.String("(+ 1 2)"), AttrResults.Int(1)))
	child.End()
	SetStatus(parent, errors.New("boom"))
	parent.End()

	if err := tracer.ForceFlush(context.Background()); err != nil {
		t.Fatal(err)
	}
	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("exported %d spans, want 2", len(spans))
	}

	evaluate, run := spans[0], spans[1]
	if evaluate.Name != "runner.evaluate" || run.Name != "runner.run" {
		t.Fatalf("span names = %q, %q", evaluate.Name, run.Name)
	}
	if evaluate.Parent.SpanID() != run.SpanContext.SpanID() {
		t.Error("evaluate span is not a child of run span")
	}
	if run.Status.Code != codes.Error || len(run.Events) == 0 {
		t.Errorf("run status = %+v, events = %d", run.Status, len(run.Events))
	}

	found := false
	for _, kv := range evaluate.Attributes {
		if kv.Key == AttrAtom && kv.Value.AsString() == "(+ 1 2)" {
			found = true
		}
	}
	if !found {
		t.Errorf("evaluate attributes = %v", evaluate.Attributes)
	}
}

func TestTracer_NeverSampler(t *testing.T) {
	tracer, exporter := newRecordingTracer(t, SamplerNever, 0)

	_, span := tracer.Start(context.Background(), "dropped")
	span.End()
	_ = tracer.ForceFlush(context.Background())

	if n := len(exporter.GetSpans()); n != 0 {
		t.Errorf("exported %d spans with never sampler", n)
	}
}

func TestCreateSampler(t *testing.T) {
	tests := []struct {
		strategy string
		ratio    float64
		wantErr  bool
	}{
		{SamplerAlways, 0, false},
		{SamplerNever, 0, false},
		{SamplerRatio, 0.25, false},
		{SamplerRatio, 1.5, true},
		{"sometimes", 0, true},
	}
	for _, tt := range tests {
		_, err := createSampler(tt.strategy, tt.ratio)
		if (err != nil) != tt.wantErr {
			t.Errorf("createSampler(%q, %v) error = %v, wantErr %v", tt.strategy, tt.ratio, err, tt.wantErr)
		}
	}
}

func TestTraceID(t *testing.T) {
	if TraceID(context.Background()) != "" {
		t.Error("TraceID() of empty context is not empty")
	}

	tracer, _ := newRecordingTracer(t, SamplerAlways, 0)
	ctx, span := tracer.Start(context.Background(), "op")
	defer span.End()
	if got := TraceID(ctx); got != span.SpanContext().TraceID().String() {
		t.Errorf("TraceID() = %q", got)
	}
}

func TestHTTPMiddleware(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	var got trace.SpanContext
	handler := HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = trace.SpanContextFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/eval", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got.TraceID().String() != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("extracted trace ID = %s", got.TraceID())
	}
	if rec.Header().Get("X-Trace-ID") != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("X-Trace-ID = %q", rec.Header().Get("X-Trace-ID"))
	}

	headers := http.Header{}
	Inject(trace.ContextWithSpanContext(context.Background(), got), headers)
	if headers.Get("traceparent") == "" {
		t.Error("Inject() wrote no traceparent")
	}
}
