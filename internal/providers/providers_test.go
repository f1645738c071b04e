package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackzampolin/citecheck/internal/config"
)

func TestNewSelectsBackend(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		apiKey   string
		want     string
	}{
		{"openai", "openai", "sk-test", "openai"},
		{"gpt_alias", "gpt", "sk-test", "openai"},
		{"qwen", "qwen", "ds-test", "qwen"},
		{"dashscope_alias", "dashscope", "ds-test", "qwen"},
		{"no_key", "openai", "", "unconfigured"},
		{"placeholder_key", "openai", "your-api-key", "unconfigured"},
		{"unknown_provider", "anthropic", "sk-test", "unconfigured"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Provider.Name = tt.provider
			cfg.Provider.APIKey = tt.apiKey

			b := New(cfg, nil)
			if b.Name() != tt.want {
				t.Errorf("New().Name() = %q, want %q", b.Name(), tt.want)
			}
		})
	}
}

func TestUnconfigured(t *testing.T) {
	got := Unconfigured{}.Analyze(context.Background(), "any prompt")
	if got != UnavailableMessage {
		t.Fatalf("Analyze = %q, want %q", got, UnavailableMessage)
	}
}

func TestDashScopeBackend(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != dashScopeGenerationPath {
				t.Errorf("path = %s", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer ds-test" {
				t.Errorf("Authorization = %q", got)
			}
			var req dashScopeRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode request: %v", err)
			}
			if req.Input.Prompt != "judge this citation" {
				t.Errorf("prompt = %q", req.Input.Prompt)
			}
			if req.Parameters.Temperature != 0 {
				t.Errorf("temperature = %v, want 0", req.Parameters.Temperature)
			}
			w.Write([]byte(`{"output":{"text":"Relevance: direct"}}`))
		}))
		defer srv.Close()

		b := NewDashScopeBackend(DashScopeConfig{
			APIKey: "ds-test", BaseURL: srv.URL, HTTPClient: srv.Client(),
		})
		got := b.Analyze(context.Background(), "judge this citation")
		if got != "Relevance: direct" {
			t.Fatalf("Analyze = %q", got)
		}
	})

	t.Run("api_error_fails_soft", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"code":"InvalidParameter","message":"model not found"}`))
		}))
		defer srv.Close()

		b := NewDashScopeBackend(DashScopeConfig{
			APIKey: "ds-test", BaseURL: srv.URL, HTTPClient: srv.Client(),
		})
		got := b.Analyze(context.Background(), "prompt")
		if !strings.HasPrefix(got, "AI analysis failed:") {
			t.Fatalf("Analyze = %q, want a diagnostic string", got)
		}
		if !strings.Contains(got, "model not found") {
			t.Errorf("Analyze = %q, should carry the API message", got)
		}
	})

	t.Run("connection_error_fails_soft", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		b := NewDashScopeBackend(DashScopeConfig{APIKey: "ds-test", BaseURL: srv.URL})
		got := b.Analyze(context.Background(), "prompt")
		if !strings.HasPrefix(got, "AI analysis failed:") {
			t.Fatalf("Analyze = %q, want a diagnostic string", got)
		}
	})
}

func TestMockBackend(t *testing.T) {
	b := NewMockBackend()
	if got := b.Analyze(context.Background(), "p"); got != "mock analysis" {
		t.Fatalf("Analyze = %q", got)
	}
	b.Analyze(context.Background(), "p")
	if b.RequestCount() != 2 {
		t.Fatalf("RequestCount = %d, want 2", b.RequestCount())
	}
	b.Reset()
	if b.RequestCount() != 0 {
		t.Fatalf("RequestCount after Reset = %d", b.RequestCount())
	}

	b.FailText = "AI analysis failed: quota"
	if got := b.Analyze(context.Background(), "p"); got != "AI analysis failed: quota" {
		t.Fatalf("Analyze = %q", got)
	}
}
