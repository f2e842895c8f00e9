package model

import "time"

// Request-parameter bounds enforced at the API and CLI boundaries. Values
// outside these ranges are rejected, not clamped.
const (
	MaxLimitPerSource = 100
	MaxLookbackHours  = 720
)

// Config holds the full claimscope configuration
type Config struct {
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	HTTP     HTTPConfig     `yaml:"http" mapstructure:"http"`
	Cache    CacheConfig    `yaml:"cache" mapstructure:"cache"`
	Ingest   IngestConfig   `yaml:"ingest" mapstructure:"ingest"`
	Cluster  ClusterConfig  `yaml:"cluster" mapstructure:"cluster"`
	LLM      LLMConfig      `yaml:"llm" mapstructure:"llm"`
}

// DatabaseConfig holds SQLite settings
type DatabaseConfig struct {
	// Dir is the base directory for the database file (default: ~/.claimscope)
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ServerConfig holds HTTP API server settings
type ServerConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
}

// HTTPConfig holds outbound fetch settings for feed adapters
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// CacheConfig holds fetch-cache settings
type CacheConfig struct {
	Enabled         bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL             time.Duration `yaml:"ttl" mapstructure:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" mapstructure:"cleanup_interval"`
}

// IngestConfig holds feed ingestion settings
type IngestConfig struct {
	LimitPerSource    int      `yaml:"limit_per_source" mapstructure:"limit_per_source"`
	RequestsPerSecond float64  `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int      `yaml:"burst" mapstructure:"burst"`
	KeywordLimit      int      `yaml:"keyword_limit" mapstructure:"keyword_limit"`
	WebpageURLs       []string `yaml:"webpage_urls" mapstructure:"webpage_urls"`
}

// ClusterConfig holds clustering defaults
type ClusterConfig struct {
	LookbackHours       int     `yaml:"lookback_hours" mapstructure:"lookback_hours"`
	SimilarityThreshold float64 `yaml:"similarity_threshold" mapstructure:"similarity_threshold"`
}

// LLMConfig holds claim-extraction model settings.
// The core pipeline never invokes the model; this configures the calling layer.
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // openai, ollama, ""
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	Version   string `yaml:"version" mapstructure:"version"` // extraction_version tag
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Dir: "", // resolved to ~/.claimscope by the CLI when empty
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8475,
		},
		HTTP: HTTPConfig{
			Timeout:      15 * time.Second,
			UserAgent:    "Claimscope/0.1 (+https://github.com/tkarpov/claimscope)",
			MaxBodyBytes: 2_000_000,
		},
		Cache: CacheConfig{
			Enabled:         true,
			TTL:             10 * time.Minute,
			CleanupInterval: 30 * time.Minute,
		},
		Ingest: IngestConfig{
			LimitPerSource:    10,
			RequestsPerSecond: 2,
			Burst:             5,
			KeywordLimit:      25,
		},
		Cluster: ClusterConfig{
			LookbackHours:       72,
			SimilarityThreshold: 0.35,
		},
		LLM: LLMConfig{
			Provider:  "",
			Model:     "gpt-4o-mini",
			Timeout:   30,
			MaxTokens: 2000,
		},
	}
}
