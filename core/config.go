package core

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Inference provider identifiers accepted by INFERENCE_PROVIDER.
const (
	ProviderHuggingFace = "huggingface"
	ProviderOpenAI      = "openai"
	ProviderGemini      = "gemini"
)

// Defaults for zero-config local use against the HuggingFace Inference API.
const (
	DefaultModelName          = "black-forest-labs/FLUX.1-schnell"
	DefaultHuggingFaceURL     = "https://router.huggingface.co/hf-inference"
	DefaultOpenAIURL          = "https://api.openai.com/v1"
	DefaultHost               = "localhost"
	DefaultPort               = 8501
	DefaultLogFile            = "imagestudio.log"
	DefaultInferenceTimeout   = 120 * time.Second
	DefaultSessionTTL         = 24 * time.Hour
	DefaultGenerateRate       = 6
	DefaultGenerateBurst      = 2
	DefaultShutdownTimeout    = 30 * time.Second
	DefaultAuditRetentionDays = 30
	HuggingFaceTokenVariable  = "HUGGINGFACE_TOKEN"
)

// Config holds all configuration values
type Config struct {
	// Inference
	Provider         string        // huggingface, openai or gemini
	HuggingFaceToken string        // Credential for the HuggingFace Inference API
	OpenAIAPIKey     string        // Credential for the OpenAI Images API
	GeminiAPIKey     string        // Credential for the Gemini API
	ModelName        string        // Model identifier sent with every request
	InferenceBaseURL string        // Base URL of the inference endpoint
	InferenceTimeout time.Duration // HTTP timeout for one generation call

	// Server
	Host                 string
	Port                 int
	DevMode              bool
	AllowSelfSignedCerts bool
	ShutdownTimeout      time.Duration

	// Logging
	LogLevel string
	LogFile  string

	// Sessions
	SessionTTL            time.Duration
	HistoryLimit          int // 0 keeps every entry for the life of the session
	GenerateRatePerMinute int // 0 disables the per-session throttle
	GenerateBurst         int

	// Optional extras
	CatalogFile        string // Overrides the embedded style/size/prompt catalog
	AuditDBPath        string // Enables the SQLite generation audit log when set
	AuditRetentionDays int    // Audit rows older than this are deleted; 0 keeps everything
}

// LoadConfig loads configuration from environment variables with defaults
// that match the hosted HuggingFace setup. A missing credential is NOT an
// error here: the server still starts and serves setup instructions. Use
// CredentialError to find out whether generation can proceed.
func LoadConfig() (*Config, error) {
	provider := strings.ToLower(GetEnvOrDefault("INFERENCE_PROVIDER", ProviderHuggingFace))
	switch provider {
	case ProviderHuggingFace, ProviderOpenAI, ProviderGemini:
	default:
		return nil, ErrInvalidConfig("INFERENCE_PROVIDER", provider,
			"Set INFERENCE_PROVIDER to huggingface, openai or gemini")
	}

	baseURL := GetEnvOrDefault("INFERENCE_BASE_URL", defaultBaseURL(provider))
	if provider == ProviderOpenAI {
		baseURL = GetEnvOrDefault("OPENAI_BASE_URL", baseURL)
	}

	cfg := &Config{
		Provider:         provider,
		HuggingFaceToken: strings.TrimSpace(GetEnv(HuggingFaceTokenVariable)),
		OpenAIAPIKey:     strings.TrimSpace(GetEnv("OPENAI_API_KEY")),
		GeminiAPIKey:     strings.TrimSpace(GetEnv("GEMINI_API_KEY")),
		ModelName:        GetEnvOrDefault("MODEL_NAME", defaultModel(provider)),
		InferenceBaseURL: strings.TrimRight(baseURL, "/"),
		InferenceTimeout: ParseDurationEnv("INFERENCE_TIMEOUT", int(DefaultInferenceTimeout/time.Second)),

		Host:                 GetEnvOrDefault("HOST", DefaultHost),
		Port:                 ParseIntEnv("PORT", DefaultPort),
		DevMode:              ParseBoolEnv("DEV_MODE", false),
		AllowSelfSignedCerts: ParseBoolEnv("ALLOW_SELF_SIGNED_CERTS", false),
		ShutdownTimeout:      ParseDurationEnv("SHUTDOWN_TIMEOUT", int(DefaultShutdownTimeout/time.Second)),

		LogLevel: GetEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:  GetEnvOrDefault("LOG_FILE", DefaultLogFile),

		SessionTTL:            ParseDurationEnv("SESSION_TTL", int(DefaultSessionTTL/time.Second)),
		HistoryLimit:          ParseIntEnv("HISTORY_LIMIT", 0),
		GenerateRatePerMinute: ParseIntEnv("GENERATE_RATE_PER_MINUTE", DefaultGenerateRate),
		GenerateBurst:         ParseIntEnv("GENERATE_BURST", DefaultGenerateBurst),

		CatalogFile:        GetEnv("CATALOG_FILE"),
		AuditDBPath:        GetEnv("AUDIT_DB_PATH"),
		AuditRetentionDays: ParseIntEnv("AUDIT_RETENTION_DAYS", DefaultAuditRetentionDays),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks range constraints. Unparseable numbers have already fallen
// back to defaults, so only semantically invalid values end up here.
func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return ErrInvalidConfig("PORT", fmt.Sprint(c.Port), "Set PORT to a value between 1 and 65535")
	}
	if c.InferenceTimeout <= 0 {
		return ErrInvalidConfig("INFERENCE_TIMEOUT", c.InferenceTimeout.String(), "Set INFERENCE_TIMEOUT to a positive number of seconds")
	}
	if c.SessionTTL <= 0 {
		return ErrInvalidConfig("SESSION_TTL", c.SessionTTL.String(), "Set SESSION_TTL to a positive number of seconds")
	}
	if c.HistoryLimit < 0 {
		return ErrInvalidConfig("HISTORY_LIMIT", fmt.Sprint(c.HistoryLimit), "Set HISTORY_LIMIT to 0 (unbounded) or a positive number")
	}
	if c.GenerateRatePerMinute < 0 {
		return ErrInvalidConfig("GENERATE_RATE_PER_MINUTE", fmt.Sprint(c.GenerateRatePerMinute), "Set GENERATE_RATE_PER_MINUTE to 0 (disabled) or a positive number")
	}
	if c.GenerateRatePerMinute > 0 && c.GenerateBurst < 1 {
		return ErrInvalidConfig("GENERATE_BURST", fmt.Sprint(c.GenerateBurst), "Set GENERATE_BURST to at least 1")
	}
	if c.AuditRetentionDays < 0 {
		return ErrInvalidConfig("AUDIT_RETENTION_DAYS", fmt.Sprint(c.AuditRetentionDays), "Set AUDIT_RETENTION_DAYS to 0 (keep everything) or a positive number of days")
	}
	return nil
}

func defaultBaseURL(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return DefaultOpenAIURL
	case ProviderGemini:
		return ""
	default:
		return DefaultHuggingFaceURL
	}
}

func defaultModel(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "dall-e-3"
	case ProviderGemini:
		return "imagen-3.0-generate-002"
	default:
		return DefaultModelName
	}
}

// Credential returns the API credential for the configured provider.
func (c *Config) Credential() string {
	switch c.Provider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderGemini:
		return c.GeminiAPIKey
	default:
		return c.HuggingFaceToken
	}
}

// CredentialVariable returns the environment variable that holds the
// credential for the configured provider.
func (c *Config) CredentialVariable() string {
	switch c.Provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return HuggingFaceTokenVariable
	}
}

// CredentialError returns a ConfigError when the provider credential is
// missing, nil otherwise.
func (c *Config) CredentialError() *ConfigError {
	if c.Credential() != "" {
		return nil
	}
	return ErrMissingAuth(c.Provider)
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AuditEnabled reports whether the generation audit log is configured.
func (c *Config) AuditEnabled() bool {
	return c.AuditDBPath != ""
}

// GetHTTPClient returns an HTTP client configured with TLS settings based on AllowSelfSignedCerts
func GetHTTPClient(cfg *Config, timeout time.Duration) *http.Client {
	client := &http.Client{
		Timeout: timeout,
	}

	if cfg != nil && cfg.AllowSelfSignedCerts {
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return client
}

// GetInferenceHTTPClient returns the HTTP client used for generation calls.
// The inference timeout is the only timeout applied to a generation.
func GetInferenceHTTPClient(cfg *Config) *http.Client {
	return GetHTTPClient(cfg, cfg.InferenceTimeout)
}
