// Package providers implements the pluggable analysis backends that turn a
// relevance prompt into a judgment string.
package providers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jackzampolin/citecheck/internal/config"
)

// Backend is the single capability the orchestrator depends on.
//
// Analyze fails soft: on any internal failure it returns a diagnostic string
// rather than an error, because one failed judgment must never abort the
// batch. Implementations must be safe for concurrent use.
type Backend interface {
	// Analyze sends the prompt and returns the judgment text.
	Analyze(ctx context.Context, prompt string) string

	// Name returns the backend identifier (e.g., "openai").
	Name() string
}

// UnavailableMessage is returned per call when no backend is configured.
const UnavailableMessage = "AI analysis unavailable: no valid API key configured"

// New selects a backend from configuration. A missing credential or unknown
// provider yields the Unconfigured backend; the pipeline still runs and
// produces a partial report.
func New(cfg *config.Config, logger *slog.Logger) Backend {
	if logger == nil {
		logger = slog.Default()
	}

	credential := cfg.Credential()
	if credential == "" {
		logger.Warn("no API key configured, relevance analysis disabled")
		return Unconfigured{}
	}

	switch strings.ToLower(cfg.Provider.Name) {
	case "openai", "gpt":
		return NewOpenAIBackend(OpenAIConfig{
			APIKey:  credential,
			Model:   cfg.Provider.Model,
			BaseURL: cfg.Provider.APIURL,
			Logger:  logger,
		})
	case "qwen", "dashscope":
		return NewDashScopeBackend(DashScopeConfig{
			APIKey:  credential,
			Model:   cfg.Provider.Model,
			BaseURL: cfg.Provider.APIURL,
			Logger:  logger,
		})
	default:
		logger.Warn("unsupported provider, relevance analysis disabled", "provider", cfg.Provider.Name)
		return Unconfigured{}
	}
}

// Unconfigured is the backend used when no provider can be constructed.
type Unconfigured struct{}

// Analyze returns the fixed unavailable message.
func (Unconfigured) Analyze(context.Context, string) string {
	return UnavailableMessage
}

// Name returns the backend identifier.
func (Unconfigured) Name() string { return "unconfigured" }

var _ Backend = Unconfigured{}
