package providers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	OpenAIName         = "openai"
	openAIDefaultModel = "gpt-5-mini"
)

// OpenAIConfig holds configuration for the OpenAI-compatible backend.
type OpenAIConfig struct {
	APIKey     string
	Model      string
	BaseURL    string        // Optional: OpenAI-compatible gateways
	MaxRetries int           // SDK transport retries
	Timeout    time.Duration // HTTP timeout
	MaxTokens  int           // Completion token cap
	Logger     *slog.Logger
	HTTPClient *http.Client // Optional (tests)
}

// OpenAIBackend implements Backend using the official OpenAI SDK.
type OpenAIBackend struct {
	model     string
	maxTokens int
	logger    *slog.Logger
	client    openai.Client
}

// NewOpenAIBackend creates an OpenAI analysis backend.
func NewOpenAIBackend(cfg OpenAIConfig) *OpenAIBackend {
	if cfg.Model == "" {
		cfg.Model = openAIDefaultModel
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 500
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIBackend{
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    cfg.Logger,
		client:    openai.NewClient(opts...),
	}
}

// Name returns the backend identifier.
func (b *OpenAIBackend) Name() string { return OpenAIName }

// Analyze sends the prompt as a single user message with temperature 0 for
// reproducible judgments. Failures return a diagnostic string.
func (b *OpenAIBackend) Analyze(ctx context.Context, prompt string) string {
	completion, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(b.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature:         openai.Float(0),
		MaxCompletionTokens: openai.Int(int64(b.maxTokens)),
	})
	if err != nil {
		b.logger.Warn("openai analysis call failed", "model", b.model, "error", err)
		return fmt.Sprintf("AI analysis failed: %v", err)
	}
	if len(completion.Choices) == 0 {
		b.logger.Warn("openai returned no choices", "model", b.model)
		return "AI analysis failed: empty response"
	}
	return completion.Choices[0].Message.Content
}

var _ Backend = (*OpenAIBackend)(nil)
