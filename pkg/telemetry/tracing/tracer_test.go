package tracing

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/config"
)

func newRecordingTracer(t *testing.T) (*Tracer, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tr, err := NewWithExporter(config.TracingConfig{Enabled: true, Sampler: SamplerAlways}, "test", exporter)
	if err != nil {
		t.Fatalf("NewWithExporter() error = %v", err)
	}
	t.Cleanup(func() { tr.Shutdown(context.Background()) })
	return tr, exporter
}

func attrValue(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestNew_Disabled(t *testing.T) {
	tr, err := New(config.TracingConfig{Enabled: false}, "test")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if tr.Enabled() {
		t.Error("Enabled() = true, want false")
	}

	ctx, span := tr.Start(context.Background(), SpanTrack)
	if span.SpanContext().IsValid() {
		t.Error("disabled tracer produced a valid span context")
	}
	if got := TraceID(ctx); got != "" {
		t.Errorf("TraceID() = %q, want empty", got)
	}
	End(span, nil)

	if err := tr.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNew_EnabledWithoutCollector(t *testing.T) {
	tr, err := New(config.TracingConfig{
		Enabled:  true,
		Sampler:  SamplerAlways,
		Endpoint: "127.0.0.1:1",
		Insecure: true,
	}, "test")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !tr.Enabled() {
		t.Error("Enabled() = false, want true")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = tr.Shutdown(ctx)
}

func TestNewWithExporter_InvalidSampler(t *testing.T) {
	_, err := NewWithExporter(config.TracingConfig{Enabled: true, Sampler: "half"}, "test", tracetest.NewInMemoryExporter())
	if err == nil || !strings.Contains(err.Error(), "sampler") {
		t.Errorf("NewWithExporter() error = %v, want sampler error", err)
	}
}

func TestTracer_SpanAttributes(t *testing.T) {
	tr, exporter := newRecordingTracer(t)

	ctx, span := tr.Start(context.Background(), SpanCompletion, ProviderAttributes("openai", "gpt-4o-mini")...)
	SetUserAttributes(span, "alice", "")
	SetUsageAttributes(span, 100, 50, 0.0045)
	if TraceID(ctx) == "" {
		t.Error("TraceID() is empty inside a recorded span")
	}
	End(span, nil)

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("exported %d spans, want 1", len(spans))
	}
	got := spans[0]
	if got.Name != SpanCompletion {
		t.Errorf("Name = %q, want %q", got.Name, SpanCompletion)
	}
	if got.Status.Code != codes.Ok {
		t.Errorf("Status = %v, want Ok", got.Status.Code)
	}

	tests := []struct {
		key  string
		want attribute.Value
	}{
		{AttrProvider, attribute.StringValue("openai")},
		{AttrModel, attribute.StringValue("gpt-4o-mini")},
		{AttrUser, attribute.StringValue("alice")},
		{AttrTokensTotal, attribute.IntValue(150)},
		{AttrCost, attribute.Float64Value(0.0045)},
	}
	for _, tt := range tests {
		v, ok := attrValue(got.Attributes, tt.key)
		if !ok {
			t.Errorf("attribute %s missing", tt.key)
			continue
		}
		if v != tt.want {
			t.Errorf("attribute %s = %v, want %v", tt.key, v.Emit(), tt.want.Emit())
		}
	}
	if _, ok := attrValue(got.Attributes, AttrSession); ok {
		t.Error("empty session was recorded")
	}
}

type typedErr struct{}

func (typedErr) Error() string     { return "slow down" }
func (typedErr) ErrorType() string { return "rate_limit" }

func TestEnd_Error(t *testing.T) {
	tr, exporter := newRecordingTracer(t)

	_, span := tr.Start(context.Background(), SpanTrack)
	err := typedErr{}
	SetErrorType(span, err)
	End(span, err)

	got := exporter.GetSpans()[0]
	if got.Status.Code != codes.Error {
		t.Errorf("Status = %v, want Error", got.Status.Code)
	}
	if v, ok := attrValue(got.Attributes, AttrErrorType); !ok || v.AsString() != "rate_limit" {
		t.Errorf("error type = %v, want rate_limit", v.Emit())
	}
	if len(got.Events) == 0 {
		t.Error("error was not recorded as an event")
	}

	SetErrorType(span, errors.New("plain"))
}

func TestTracer_ParentChild(t *testing.T) {
	tr, exporter := newRecordingTracer(t)

	ctx, parent := tr.Start(context.Background(), SpanCompletion)
	_, child := tr.Start(ctx, SpanTrack)
	End(child, nil)
	End(parent, nil)

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("exported %d spans, want 2", len(spans))
	}
	if spans[0].Parent.SpanID() != spans[1].SpanContext.SpanID() {
		t.Error("child span is not parented to the completion span")
	}
}

func TestInjectExtract(t *testing.T) {
	tr, _ := newRecordingTracer(t)

	ctx, span := tr.Start(context.Background(), SpanCompletion)
	defer span.End()

	headers := http.Header{}
	Inject(ctx, headers)
	traceparent := headers.Get("traceparent")
	if !strings.Contains(traceparent, TraceID(ctx)) {
		t.Fatalf("traceparent = %q, want trace id %s", traceparent, TraceID(ctx))
	}

	remote := Extract(context.Background(), headers)
	if got := TraceID(remote); got != TraceID(ctx) {
		t.Errorf("extracted trace id = %q, want %q", got, TraceID(ctx))
	}

	empty := http.Header{}
	Inject(context.Background(), empty)
	if empty.Get("traceparent") != "" {
		t.Error("Inject() wrote traceparent without a span")
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
		{"", 0.1, false},
		{SamplerRatio, 1.5, true},
		{SamplerRatio, -0.1, true},
		{"sometimes", 0, true},
	}

	for _, tt := range tests {
		_, err := createSampler(tt.strategy, tt.ratio)
		if (err != nil) != tt.wantErr {
			t.Errorf("createSampler(%q, %v) error = %v, wantErr %v", tt.strategy, tt.ratio, err, tt.wantErr)
		}
	}
}
