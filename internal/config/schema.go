package config

// Config holds citecheck configuration.
// Stored at: ./config.yaml or ~/.citecheck/config.yaml
type Config struct {
	Analysis AnalysisCfg `mapstructure:"analysis" yaml:"analysis"`
	Provider ProviderCfg `mapstructure:"provider" yaml:"provider"`
	Fetch    FetchCfg    `mapstructure:"fetch" yaml:"fetch"`
}

// AnalysisCfg controls how much evidence each relevance judgment uses.
type AnalysisCfg struct {
	// Mode is "full" (metadata + full-text prefix), "quick" (metadata only)
	// or "subjective" (reference text only, no external fetch).
	Mode string `mapstructure:"mode" yaml:"mode"`

	// MaxPromptChars truncates assembled prompts before the backend call.
	MaxPromptChars int `mapstructure:"max_prompt_chars" yaml:"max_prompt_chars"`
}

// ProviderCfg selects and configures the analysis backend.
type ProviderCfg struct {
	Name   string `mapstructure:"name" yaml:"name"`       // "openai", "qwen"
	Model  string `mapstructure:"model" yaml:"model"`     // Model name
	APIKey string `mapstructure:"api_key" yaml:"api_key"` // API key (supports ${ENV_VAR} syntax)
	APIURL string `mapstructure:"api_url" yaml:"api_url"` // Base URL override
}

// FetchCfg bounds the metadata/content fetcher.
type FetchCfg struct {
	TimeoutSeconds       int `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	MaxRetries           int `mapstructure:"max_retries" yaml:"max_retries"`
	RetryDelayMinSeconds int `mapstructure:"retry_delay_min_seconds" yaml:"retry_delay_min_seconds"`
	RetryDelayMaxSeconds int `mapstructure:"retry_delay_max_seconds" yaml:"retry_delay_max_seconds"`
}

// Analysis modes.
const (
	ModeFull       = "full"
	ModeQuick      = "quick"
	ModeSubjective = "subjective"
)

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisCfg{
			Mode:           ModeFull,
			MaxPromptChars: 3000,
		},
		Provider: ProviderCfg{
			Name:   "openai",
			Model:  "gpt-5-mini",
			APIKey: "${CITECHECK_API_KEY}",
		},
		Fetch: FetchCfg{
			TimeoutSeconds:       60,
			MaxRetries:           3,
			RetryDelayMinSeconds: 4,
			RetryDelayMaxSeconds: 10,
		},
	}
}

// ValidMode reports whether mode is a supported analysis mode.
func ValidMode(mode string) bool {
	switch mode {
	case ModeFull, ModeQuick, ModeSubjective:
		return true
	default:
		return false
	}
}
