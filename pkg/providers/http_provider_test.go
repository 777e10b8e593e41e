package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/config"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/telemetry/logging"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/telemetry/tracing"
)

func newTestProvider(url string, retries int) *HTTPProvider {
	p := NewHTTPProvider(ProviderConfig{
		Name:       "test-provider",
		Type:       "openai",
		BaseURL:    url,
		Timeout:    5 * time.Second,
		MaxRetries: retries,
	}, logging.Nop())
	p.SetRetryBackoff(time.Millisecond)
	return p
}

func TestNewHTTPProvider_Defaults(t *testing.T) {
	p := NewHTTPProvider(ProviderConfig{Name: "x", MaxRetries: -1}, nil)

	cfg := p.GetConfig()
	if cfg.Timeout != config.DefaultProviderTimeout {
		t.Errorf("expected default timeout %s, got %s", config.DefaultProviderTimeout, cfg.Timeout)
	}
	if cfg.MaxRetries != 0 {
		t.Errorf("expected negative retries clamped to 0, got %d", cfg.MaxRetries)
	}
	if p.client.Timeout != config.DefaultProviderTimeout {
		t.Errorf("client timeout not applied: %s", p.client.Timeout)
	}
}

func TestHTTPProvider_RetryOn5xx(t *testing.T) {
	attemptCount := int32(0)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count := atomic.AddInt32(&attemptCount, 1)
		if count <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error": "internal server error"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"message": "success"}`))
	}))
	defer server.Close()

	provider := newTestProvider(server.URL, 3)

	resp, err := provider.DoRequest(context.Background(), http.MethodPost, server.URL+"/test", []byte(`{"test": true}`), nil)
	if err != nil {
		t.Fatalf("expected request to succeed after retries, got error: %v", err)
	}
	defer resp.Body.Close()

	if finalCount := atomic.LoadInt32(&attemptCount); finalCount != 3 {
		t.Errorf("expected 3 attempts (2 retries), got %d", finalCount)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
}

func TestHTTPProvider_NoRetryByDefault(t *testing.T) {
	attemptCount := int32(0)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attemptCount, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	provider := newTestProvider(server.URL, 0)
	_, err := provider.DoRequest(context.Background(), http.MethodGet, server.URL, nil, nil)

	var providerErr *ProviderError
	if !errors.As(err, &providerErr) || providerErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected ProviderError with 502, got %T: %v", err, err)
	}
	if got := atomic.LoadInt32(&attemptCount); got != 1 {
		t.Errorf("expected a single attempt, got %d", got)
	}
}

func TestHTTPProvider_NoRetryOn4xx(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		check      func(error) bool
	}{
		{
			name:       "400 bad request",
			statusCode: http.StatusBadRequest,
			check:      func(err error) bool { var e *ProviderError; return errors.As(err, &e) && e.StatusCode == 400 },
		},
		{
			name:       "401 unauthorized",
			statusCode: http.StatusUnauthorized,
			check:      func(err error) bool { var e *AuthError; return errors.As(err, &e) },
		},
		{
			name:       "403 forbidden",
			statusCode: http.StatusForbidden,
			check:      func(err error) bool { var e *AuthError; return errors.As(err, &e) },
		},
		{
			name:       "404 not found",
			statusCode: http.StatusNotFound,
			check:      func(err error) bool { var e *ProviderError; return errors.As(err, &e) && e.StatusCode == 404 },
		},
		{
			name:       "429 rate limit",
			statusCode: http.StatusTooManyRequests,
			check: func(err error) bool {
				var e *RateLimitError
				return errors.As(err, &e) && e.RetryAfter == 7*time.Second
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attemptCount := int32(0)
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&attemptCount, 1)
				w.Header().Set("Retry-After", "7")
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(`{"error": "client error"}`))
			}))
			defer server.Close()

			provider := newTestProvider(server.URL, 3)
			resp, err := provider.DoRequest(context.Background(), http.MethodPost, server.URL+"/test", []byte(`{}`), nil)
			if resp != nil {
				resp.Body.Close()
			}

			if !tt.check(err) {
				t.Errorf("unexpected error %T: %v", err, err)
			}
			if finalCount := atomic.LoadInt32(&attemptCount); finalCount != 1 {
				t.Errorf("expected 1 attempt (no retries for 4xx), got %d", finalCount)
			}
		})
	}
}

func TestHTTPProvider_MaxRetries(t *testing.T) {
	attemptCount := int32(0)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attemptCount, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	provider := newTestProvider(server.URL, 2)
	_, err := provider.DoRequest(context.Background(), http.MethodPost, server.URL+"/test", []byte(`{}`), nil)
	if err == nil {
		t.Fatal("expected error after max retries exceeded")
	}

	if finalCount := atomic.LoadInt32(&attemptCount); finalCount != 3 {
		t.Errorf("expected 3 attempts (initial + 2 retries), got %d", finalCount)
	}
}

func TestHTTPProvider_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	provider := newTestProvider(server.URL, 3)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := provider.DoRequest(ctx, http.MethodGet, server.URL, nil, nil)

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected TimeoutError, got %T: %v", err, err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected error chain to contain context.DeadlineExceeded, got %v", err)
	}
}

func TestHTTPProvider_DoJSONRequest(t *testing.T) {
	t.Run("decodes body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ct := r.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected JSON content type, got %q", ct)
			}
			if auth := r.Header.Get("Authorization"); auth != "Bearer k" {
				t.Errorf("expected auth header, got %q", auth)
			}
			_, _ = w.Write([]byte(`{"value": 42}`))
		}))
		defer server.Close()

		var out struct {
			Value int `json:"value"`
		}
		provider := newTestProvider(server.URL, 0)
		err := provider.DoJSONRequest(context.Background(), http.MethodPost, server.URL, map[string]string{"a": "b"}, &out,
			map[string]string{"Authorization": "Bearer k"})
		if err != nil {
			t.Fatalf("DoJSONRequest() error = %v", err)
		}
		if out.Value != 42 {
			t.Errorf("expected 42, got %d", out.Value)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer server.Close()

		var out map[string]any
		provider := newTestProvider(server.URL, 0)
		err := provider.DoJSONRequest(context.Background(), http.MethodGet, server.URL, nil, &out, nil)

		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("expected ParseError, got %T: %v", err, err)
		}
		if parseErr.RawResponse != "not json" {
			t.Errorf("expected raw response to be kept, got %q", parseErr.RawResponse)
		}
	})
}

func TestParseRetryAfter(t *testing.T) {
	if got := parseRetryAfter(""); got != 0 {
		t.Errorf("empty header: got %s", got)
	}
	if got := parseRetryAfter("12"); got != 12*time.Second {
		t.Errorf("seconds header: got %s", got)
	}
	if got := parseRetryAfter("soon"); got != 0 {
		t.Errorf("garbage header: got %s", got)
	}
	future := time.Now().Add(time.Hour).UTC().Format(http.TimeFormat)
	if got := parseRetryAfter(future); got <= 0 || got > time.Hour {
		t.Errorf("date header: got %s", got)
	}
}

func TestHTTPProvider_PropagatesTraceContext(t *testing.T) {
	var traceparent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceparent = r.Header.Get("traceparent")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	tracer, err := tracing.NewWithExporter(config.TracingConfig{Enabled: true, Sampler: tracing.SamplerAlways}, "test", tracetest.NewInMemoryExporter())
	if err != nil {
		t.Fatalf("NewWithExporter() error = %v", err)
	}
	defer tracer.Shutdown(context.Background())

	ctx, span := tracer.Start(context.Background(), tracing.SpanCompletion)
	defer span.End()

	provider := newTestProvider(server.URL, 0)
	if err := provider.DoJSONRequest(ctx, http.MethodPost, server.URL, map[string]string{}, nil, nil); err != nil {
		t.Fatalf("DoJSONRequest() error = %v", err)
	}

	if traceparent == "" {
		t.Fatal("traceparent header was not sent")
	}
	if want := tracing.TraceID(ctx); !strings.Contains(traceparent, want) {
		t.Errorf("traceparent = %q, want trace id %s", traceparent, want)
	}
}
