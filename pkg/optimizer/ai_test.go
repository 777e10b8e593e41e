package optimizer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Hypothesize-Tech/costkatana-core-sub000/internal/testutil"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/config"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/providers"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/providers/openai"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/telemetry/logging"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/telemetry/metrics"
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/usage"
)

const aiReply = `Sure, here you go:
{"suggestions":[{"optimizedPrompt":"Summarize.","explanation":"Drop redundant words","confidence":0.9}],"generalTips":"Prefer imperative phrasing."}
Hope this helps!`

func newCollector() (*metrics.Collector, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return metrics.NewCollector(&config.MetricsConfig{Enabled: true}, reg), reg
}

// assertOutcomes compares every AI outcome series. outcomes must be sorted.
func assertOutcomes(t *testing.T, reg *prometheus.Registry, outcomes ...string) {
	t.Helper()
	var b strings.Builder
	b.WriteString("# HELP costkatana_core_ai_optimizer_calls_total AI-assisted optimization calls by outcome\n")
	b.WriteString("# TYPE costkatana_core_ai_optimizer_calls_total counter\n")
	for _, o := range outcomes {
		b.WriteString(`costkatana_core_ai_optimizer_calls_total{outcome="` + o + `"} 1` + "\n")
	}
	if err := promtestutil.GatherAndCompare(reg, strings.NewReader(b.String()), "costkatana_core_ai_optimizer_calls_total"); err != nil {
		t.Errorf("unexpected AI outcome metrics: %v", err)
	}
}

func newAIOptimizer(t *testing.T, p providers.Provider, cfg config.OptimizerConfig) (*Optimizer, *prometheus.Registry) {
	t.Helper()
	collector, reg := newCollector()
	ai, err := NewAIClient(p, cfg, logging.Nop(), collector)
	if err != nil {
		t.Fatalf("NewAIClient failed: %v", err)
	}
	opt := newTestOptimizer()
	opt.SetAIClient(ai)
	return opt, reg
}

func TestNewAIClient_RequiresProvider(t *testing.T) {
	if _, err := NewAIClient(nil, config.OptimizerConfig{}, nil, nil); err == nil {
		t.Fatal("expected error for nil provider")
	}
}

func TestAIPass_Success(t *testing.T) {
	fake := testutil.NewFakeProvider("anthropic", aiReply)
	opt, reg := newAIOptimizer(t, fake, config.OptimizerConfig{})

	got, err := opt.OptimizePrompt(context.Background(), "Summarize this article.", "gpt-4o", usage.ProviderOpenAI, "news feed")
	if err != nil {
		t.Fatalf("OptimizePrompt failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 AI suggestions, got %d: %+v", len(got), got)
	}

	rewrite, tips := got[0], got[1]
	if rewrite.OptimizedPrompt != "Summarize." {
		t.Errorf("OptimizedPrompt = %q", rewrite.OptimizedPrompt)
	}
	if rewrite.Confidence != 0.9 {
		t.Errorf("Confidence = %v, want 0.9", rewrite.Confidence)
	}
	// 23 chars -> 6 tokens, 10 chars -> 3 tokens
	if rewrite.EstimatedSavings != 50 {
		t.Errorf("EstimatedSavings = %v, want 50", rewrite.EstimatedSavings)
	}
	if tips.Explanation != "Prefer imperative phrasing." {
		t.Errorf("tips Explanation = %q", tips.Explanation)
	}
	if tips.Confidence != 0.6 {
		t.Errorf("tips Confidence = %v, want 0.6", tips.Confidence)
	}

	reqs := fake.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 provider call, got %d", len(reqs))
	}
	if reqs[0].Model != config.DefaultOptimizerModel {
		t.Errorf("AI model = %q, want %q", reqs[0].Model, config.DefaultOptimizerModel)
	}
	meta := reqs[0].Prompt()
	if !strings.Contains(meta, "Summarize this article.") || !strings.Contains(meta, "news feed") {
		t.Errorf("meta-prompt missing prompt or context: %q", meta)
	}

	assertOutcomes(t, reg, OutcomeSuccess)
}

func TestAIPass_TipsList(t *testing.T) {
	fake := testutil.NewFakeProvider("anthropic", `{"suggestions":[],"generalTips":["Use lists.", " ", "Avoid greetings."]}`)
	opt, _ := newAIOptimizer(t, fake, config.OptimizerConfig{})

	got, err := opt.OptimizePrompt(context.Background(), "Summarize this article.", "gpt-4o", usage.ProviderOpenAI, "")
	if err != nil {
		t.Fatalf("OptimizePrompt failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(got))
	}
	if got[0].Explanation != "Use lists. Avoid greetings." {
		t.Errorf("Explanation = %q", got[0].Explanation)
	}
}

func TestAIPass_FailuresYieldNoSuggestions(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		err        error
		noResponse bool
		outcome    string
	}{
		{"provider error", "", errors.New("connection refused"), false, OutcomeError},
		{"no json", "I cannot help with that.", nil, false, OutcomeParseError},
		{"malformed json", `{"suggestions": [`, nil, false, OutcomeParseError},
		{"empty response", "", nil, true, OutcomeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := testutil.NewFakeProvider("anthropic", tt.content)
			fake.Err = tt.err
			if tt.noResponse {
				fake.Response = nil
			}
			opt, reg := newAIOptimizer(t, fake, config.OptimizerConfig{})

			got, err := opt.OptimizePrompt(context.Background(), "Summarize this article.", "gpt-4o", usage.ProviderOpenAI, "")
			if err != nil {
				t.Fatalf("AI failure must not fail the call: %v", err)
			}
			if len(got) != 0 {
				t.Errorf("expected no suggestions, got %+v", got)
			}
			assertOutcomes(t, reg, tt.outcome)
		})
	}
}

func TestAIPass_BreakerOpens(t *testing.T) {
	fake := testutil.NewFakeProvider("anthropic", "")
	fake.Err = errors.New("upstream down")
	opt, reg := newAIOptimizer(t, fake, config.OptimizerConfig{
		BreakerFailures: 1,
		BreakerTimeout:  time.Hour,
	})

	for i := 0; i < 2; i++ {
		if _, err := opt.OptimizePrompt(context.Background(), "Summarize this article.", "gpt-4o", usage.ProviderOpenAI, ""); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}

	if n := len(fake.Requests()); n != 1 {
		t.Errorf("expected the open breaker to skip the provider, got %d calls", n)
	}
	assertOutcomes(t, reg, OutcomeBreakerOpen, OutcomeError)
}

func TestAIPass_CancelledContext(t *testing.T) {
	fake := testutil.NewFakeProvider("anthropic", aiReply)
	opt, reg := newAIOptimizer(t, fake, config.OptimizerConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := opt.OptimizePrompt(ctx, "Summarize this article.", "gpt-4o", usage.ProviderOpenAI, "")
	if err != nil {
		t.Fatalf("OptimizePrompt failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no suggestions, got %d", len(got))
	}
	if n := len(fake.Requests()); n != 0 {
		t.Errorf("expected no provider calls, got %d", n)
	}
	assertOutcomes(t, reg, OutcomeRateLimited)
}

func TestAIPass_OverHTTP(t *testing.T) {
	mock := testutil.NewMockServer()
	defer mock.Close()

	mock.SetResponse("/chat/completions", testutil.MockResponse{
		Body: testutil.OpenAIResponse(aiReply, "gpt-4o-mini"),
	})

	p, err := openai.NewProvider(providers.ProviderConfig{
		Name:    "local",
		Type:    "openai",
		BaseURL: mock.URL(),
		Timeout: 5 * time.Second,
	}, logging.Nop())
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	defer p.Close()

	opt, _ := newAIOptimizer(t, p, config.OptimizerConfig{Model: "gpt-4o-mini"})

	got, err := opt.OptimizePrompt(context.Background(), "Summarize this article.", "gpt-4o", usage.ProviderOpenAI, "")
	if err != nil {
		t.Fatalf("OptimizePrompt failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(got))
	}

	var body map[string]any
	if err := mock.DecodeLastBody(&body); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	if body["model"] != "gpt-4o-mini" {
		t.Errorf("request model = %v, want gpt-4o-mini", body["model"])
	}
}

func TestParseAIResponse(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantErr   bool
		wantTips  int
		wantRules int
	}{
		{"bare object", `{"suggestions":[{"optimizedPrompt":"x"}]}`, false, 0, 1},
		{"wrapped in prose", "Here:\n{\"generalTips\":\"t\"}\nThanks", false, 1, 0},
		{"no braces", "nothing", true, 0, 0},
		{"reversed braces", "} {", true, 0, 0},
		{"tips wrong type", `{"generalTips":42}`, false, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := parseAIResponse(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(resp.tips()) != tt.wantTips {
				t.Errorf("tips = %v, want %d", resp.tips(), tt.wantTips)
			}
			if len(resp.Suggestions) != tt.wantRules {
				t.Errorf("suggestions = %d, want %d", len(resp.Suggestions), tt.wantRules)
			}
		})
	}
}
