package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	DashScopeName           = "qwen"
	dashScopeDefaultBaseURL = "https://dashscope.aliyuncs.com"
	dashScopeDefaultModel   = "qwen-plus"
	dashScopeGenerationPath = "/api/v1/services/aigc/text-generation/generation"
)

// DashScopeConfig holds configuration for the DashScope (Qwen) backend.
type DashScopeConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	MaxTokens  int
	Logger     *slog.Logger
	HTTPClient *http.Client // Optional (tests)
}

// DashScopeBackend implements Backend against the DashScope text-generation API.
type DashScopeBackend struct {
	apiKey    string
	model     string
	baseURL   string
	maxTokens int
	logger    *slog.Logger
	client    *http.Client
}

// NewDashScopeBackend creates a DashScope analysis backend.
func NewDashScopeBackend(cfg DashScopeConfig) *DashScopeBackend {
	if cfg.Model == "" {
		cfg.Model = dashScopeDefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = dashScopeDefaultBaseURL
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
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &DashScopeBackend{
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		baseURL:   cfg.BaseURL,
		maxTokens: cfg.MaxTokens,
		logger:    cfg.Logger,
		client:    client,
	}
}

// Name returns the backend identifier.
func (b *DashScopeBackend) Name() string { return DashScopeName }

type dashScopeRequest struct {
	Model      string              `json:"model"`
	Input      dashScopeInput      `json:"input"`
	Parameters dashScopeParameters `json:"parameters"`
}

type dashScopeInput struct {
	Prompt string `json:"prompt"`
}

type dashScopeParameters struct {
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type dashScopeResponse struct {
	Output struct {
		Text string `json:"text"`
	} `json:"output"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Analyze sends the prompt to the generation endpoint. Failures return a
// diagnostic string.
func (b *DashScopeBackend) Analyze(ctx context.Context, prompt string) string {
	requestID := uuid.New().String()[:8]

	body, err := json.Marshal(dashScopeRequest{
		Model:      b.model,
		Input:      dashScopeInput{Prompt: prompt},
		Parameters: dashScopeParameters{MaxTokens: b.maxTokens, Temperature: 0},
	})
	if err != nil {
		return fmt.Sprintf("AI analysis failed: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+dashScopeGenerationPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Sprintf("AI analysis failed: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		b.logger.Warn("dashscope analysis call failed", "request_id", requestID, "error", err)
		return fmt.Sprintf("AI analysis failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Sprintf("AI analysis failed: %v", err)
	}

	var dsResp dashScopeResponse
	if err := json.Unmarshal(respBody, &dsResp); err != nil {
		b.logger.Warn("dashscope returned unparseable body", "request_id", requestID, "status", resp.StatusCode)
		return fmt.Sprintf("AI analysis failed: unparseable response (status %d)", resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		b.logger.Warn("dashscope analysis call rejected",
			"request_id", requestID, "status", resp.StatusCode, "code", dsResp.Code, "message", dsResp.Message)
		return fmt.Sprintf("AI analysis failed: %s (status %d)", dsResp.Message, resp.StatusCode)
	}
	return dsResp.Output.Text
}

var _ Backend = (*DashScopeBackend)(nil)
