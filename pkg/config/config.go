package config

import (
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// classifier backends
const (
	ClassifierModel = "model"
	ClassifierLLM   = "llm"
	ClassifierNone  = "none"
)

// Config holds the application configuration
type Config struct {
	Server struct {
		Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
		BaseURL string        `yaml:"base_url" json:"base_url" jsonschema:"default=http://localhost:8080,description=Public base URL used in generated RSS links"`
	} `yaml:"server" json:"server" jsonschema:"description=Server configuration"`

	Database struct {
		DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:sift.db?cache=shared&mode=rwc&_txlock=immediate,description=Database connection string"`
		MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=10,minimum=1,description=Maximum number of open connections"`
		MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=5,minimum=0,description=Maximum number of idle connections"`
		ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,description=Connection maximum lifetime in seconds"`
	} `yaml:"database" json:"database" jsonschema:"description=Database configuration"`

	Refresh RefreshConfig `yaml:"refresh" json:"refresh" jsonschema:"description=Feed refresh configuration"`

	Feed FeedConfig `yaml:"feed" json:"feed" jsonschema:"description=Feed document fetching configuration"`

	Extraction ExtractionConfig `yaml:"extraction" json:"extraction" jsonschema:"description=Content extraction configuration"`

	Classifier ClassifierConfig `yaml:"classifier" json:"classifier" jsonschema:"description=Article classification configuration"`
}

// RefreshConfig holds refresh scheduling and pipeline settings
type RefreshConfig struct {
	Schedule           string `yaml:"schedule" json:"schedule" jsonschema:"default=@every 30m,description=Cron expression or @every descriptor for recurring refresh"`
	RunOnStart         bool   `yaml:"run_on_start" json:"run_on_start" jsonschema:"default=true,description=Refresh all feeds right after startup"`
	MaxConcurrentFeeds int    `yaml:"max_concurrent_feeds" json:"max_concurrent_feeds" jsonschema:"default=5,minimum=1,description=Maximum feeds refreshed in parallel"`
	SummarySentences   int    `yaml:"summary_sentences" json:"summary_sentences" jsonschema:"default=2,minimum=1,description=Number of sentences in article summaries"`
	FallbackLabel      string `yaml:"fallback_label" json:"fallback_label" jsonschema:"default=Uncategorized,description=Label used when classification is unavailable or fails"`
}

// FeedConfig holds feed document fetch settings
type FeedConfig struct {
	Timeout   time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Feed fetch timeout"`
	UserAgent string        `yaml:"user_agent" json:"user_agent" jsonschema:"default=Sift/1.0,description=User agent for feed requests"`
}

// ExtractionConfig holds content extraction settings
type ExtractionConfig struct {
	Timeout       time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Extraction timeout per article"`
	UserAgent     string        `yaml:"user_agent" json:"user_agent" jsonschema:"description=User agent for page requests, desktop browser by default"`
	RateLimit     time.Duration `yaml:"rate_limit" json:"rate_limit" jsonschema:"default=500ms,description=Minimal interval between page requests"`
	MaxBodySize   int64         `yaml:"max_body_size" json:"max_body_size" jsonschema:"default=5242880,minimum=1024,description=Maximum page size in bytes"`
	MinTextLength int           `yaml:"min_text_length" json:"min_text_length" jsonschema:"default=0,minimum=0,description=Minimum extracted text length to consider valid"`
}

// ClassifierConfig selects and configures the classification backend
type ClassifierConfig struct {
	Type      string    `yaml:"type" json:"type" jsonschema:"enum=model,enum=llm,enum=none,default=none,description=Classifier backend"`
	Labels    string    `yaml:"labels" json:"labels" jsonschema:"description=Path to JSON array of label names"`
	Tokenizer string    `yaml:"tokenizer" json:"tokenizer" jsonschema:"description=Path to tokenizer vocabulary (model backend)"`
	Model     string    `yaml:"model" json:"model" jsonschema:"description=Path to model weights (model backend)"`
	LLM       LLMConfig `yaml:"llm" json:"llm" jsonschema:"description=LLM backend configuration"`
}

// LLMConfig holds LLM configuration for article classification
type LLMConfig struct {
	Endpoint     string        `yaml:"endpoint" json:"endpoint" jsonschema:"description=OpenAI-compatible API endpoint"`
	APIKey       string        `yaml:"api_key" json:"api_key" jsonschema:"description=API key (can use environment variable)"`
	Model        string        `yaml:"model" json:"model" jsonschema:"description=Model name (e.g. gpt-4o-mini or llama3)"`
	Temperature  float64       `yaml:"temperature" json:"temperature" jsonschema:"default=0.1,minimum=0,maximum=2,description=Temperature for response generation"`
	MaxTokens    int           `yaml:"max_tokens" json:"max_tokens" jsonschema:"default=100,description=Maximum tokens in response"`
	Timeout      time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Request timeout"`
	SystemPrompt string        `yaml:"system_prompt" json:"system_prompt" jsonschema:"description=System prompt for the LLM (optional)"`
	UseJSONMode  bool          `yaml:"use_json_mode" json:"use_json_mode" jsonschema:"default=false,description=Use JSON response format (not all models support this)"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse builds configuration from YAML content, applies defaults and validates it
func Parse(data []byte) (*Config, error) {
	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	cfg := Config{Refresh: RefreshConfig{RunOnStart: true}}
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		return nil, fmt.Errorf("verify config: %w", err)
	}

	return &cfg, nil
}

// Default returns configuration with all defaults applied, used when no config file is given
func Default() *Config {
	cfg := Config{Refresh: RefreshConfig{RunOnStart: true}}
	setDefaults(&cfg)
	return &cfg
}

func setDefaults(cfg *Config) {
	// server
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = 30 * time.Second
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = "http://localhost:8080"
	}

	// database
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "file:sift.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 3600
	}

	// refresh
	if cfg.Refresh.Schedule == "" {
		cfg.Refresh.Schedule = "@every 30m"
	}
	if cfg.Refresh.MaxConcurrentFeeds == 0 {
		cfg.Refresh.MaxConcurrentFeeds = 5
	}
	if cfg.Refresh.SummarySentences == 0 {
		cfg.Refresh.SummarySentences = 2
	}
	if cfg.Refresh.FallbackLabel == "" {
		cfg.Refresh.FallbackLabel = "Uncategorized"
	}

	// feed
	if cfg.Feed.Timeout == 0 {
		cfg.Feed.Timeout = 30 * time.Second
	}
	if cfg.Feed.UserAgent == "" {
		cfg.Feed.UserAgent = "Sift/1.0"
	}

	// extraction, empty user agent means the built-in browser identity
	if cfg.Extraction.Timeout == 0 {
		cfg.Extraction.Timeout = 30 * time.Second
	}
	if cfg.Extraction.RateLimit == 0 {
		cfg.Extraction.RateLimit = 500 * time.Millisecond
	}
	if cfg.Extraction.MaxBodySize == 0 {
		cfg.Extraction.MaxBodySize = 5 * 1024 * 1024
	}

	// classifier
	if cfg.Classifier.Type == "" {
		cfg.Classifier.Type = ClassifierNone
	}
	if cfg.Classifier.LLM.Temperature == 0 {
		cfg.Classifier.LLM.Temperature = 0.1
	}
	if cfg.Classifier.LLM.MaxTokens == 0 {
		cfg.Classifier.LLM.MaxTokens = 100
	}
	if cfg.Classifier.LLM.Timeout == 0 {
		cfg.Classifier.LLM.Timeout = 30 * time.Second
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}

	if _, err := cron.ParseStandard(cfg.Refresh.Schedule); err != nil {
		return fmt.Errorf("refresh.schedule %q is invalid: %w", cfg.Refresh.Schedule, err)
	}
	if cfg.Refresh.MaxConcurrentFeeds < 1 {
		return fmt.Errorf("refresh.max_concurrent_feeds must be at least 1")
	}
	if cfg.Refresh.SummarySentences < 1 {
		return fmt.Errorf("refresh.summary_sentences must be at least 1")
	}

	if cfg.Feed.Timeout < time.Second {
		return fmt.Errorf("feed timeout must be at least 1 second")
	}
	if cfg.Extraction.Timeout < time.Second {
		return fmt.Errorf("extraction timeout must be at least 1 second")
	}
	if cfg.Extraction.MinTextLength < 0 {
		return fmt.Errorf("extraction min_text_length must be non-negative")
	}

	switch cfg.Classifier.Type {
	case ClassifierNone:
	case ClassifierModel:
		if cfg.Classifier.Labels == "" || cfg.Classifier.Tokenizer == "" || cfg.Classifier.Model == "" {
			return fmt.Errorf("classifier.labels, classifier.tokenizer and classifier.model are required for model classifier")
		}
	case ClassifierLLM:
		if cfg.Classifier.Labels == "" {
			return fmt.Errorf("classifier.labels is required for llm classifier")
		}
		if cfg.Classifier.LLM.Endpoint == "" {
			return fmt.Errorf("classifier.llm.endpoint is required")
		}
		if cfg.Classifier.LLM.Model == "" {
			return fmt.Errorf("classifier.llm.model is required")
		}
		if cfg.Classifier.LLM.Temperature < 0 || cfg.Classifier.LLM.Temperature > 2 {
			return fmt.Errorf("classifier.llm.temperature must be between 0 and 2")
		}
	default:
		return fmt.Errorf("unknown classifier type %q", cfg.Classifier.Type)
	}

	return nil
}
