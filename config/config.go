package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the complete configuration of the runtime and benchmark harness.
type Config struct {
	// App identifies the running application.
	App AppConfig `yaml:"app" env:"APP"`

	// Models configures the LLM providers driven by the benchmark.
	Models ModelsConfig `yaml:"models"`

	// Tools configures credentials for the native research tools.
	Tools ToolsConfig `yaml:"tools"`

	// Cache configures local cache storage (datasets, downloads).
	Cache CacheConfig `yaml:"cache"`

	// Output configures where benchmark results are written.
	Output OutputConfig `yaml:"output"`

	// Server configures the chat/inspection HTTP server.
	Server ServerConfig `yaml:"server" env:"SERVER"`

	// Redis configures the optional call-history store.
	Redis RedisConfig `yaml:"redis" env:"REDIS"`

	// Log configures zap logging.
	Log LogConfig `yaml:"log" env:"LOG"`

	// Bench configures benchmark execution.
	Bench BenchConfig `yaml:"bench" env:"BENCH"`
}

// AppConfig identifies the application.
type AppConfig struct {
	Name    string `yaml:"name" env:"NAME"`
	Version string `yaml:"version" env:"VERSION"`
}

// ModelConfig configures a single OpenAI-compatible chat-completions endpoint.
type ModelConfig struct {
	// Name is the operator name the provider is registered under.
	Name string `yaml:"name"`
	// APIKey is the provider credential. Populated from the environment
	// (MODEL_GPT4O / MODEL_CLAUDE / MODEL_DEEPSEEK_V3).
	APIKey string `yaml:"api_key"`
	// BaseURL is the API root, e.g. "https://api.deepseek.com/v1".
	BaseURL string `yaml:"base_url"`
	// Model is the upstream model identifier sent in requests.
	Model string `yaml:"model"`
	// Temperature passed on every request.
	Temperature float32 `yaml:"temperature"`
	// MaxTokens caps the completion size; 0 leaves it to the provider.
	MaxTokens int `yaml:"max_tokens"`
	// Concurrency caps in-flight requests to this provider.
	Concurrency int `yaml:"concurrency"`
	// Timeout bounds a single completion request.
	Timeout time.Duration `yaml:"timeout"`
	// MaxRetries bounds retry attempts on retryable upstream errors.
	MaxRetries int `yaml:"max_retries"`
}

// Enabled reports whether the provider has a credential and should be
// registered. Providers without credentials are skipped with a warning;
// agents referencing them fail at space assembly.
func (m ModelConfig) Enabled() bool { return strings.TrimSpace(m.APIKey) != "" }

// ModelsConfig holds the three benchmark providers.
type ModelsConfig struct {
	GPT4o      ModelConfig `yaml:"gpt4o"`
	Claude     ModelConfig `yaml:"claude"`
	DeepSeekV3 ModelConfig `yaml:"deepseek_v3"`
}

// All returns the configured providers in a stable order.
func (m ModelsConfig) All() []ModelConfig {
	return []ModelConfig{m.DeepSeekV3, m.GPT4o, m.Claude}
}

// ToolsConfig holds tool-service credentials.
type ToolsConfig struct {
	// GitHubToken authenticates GitHub API calls (GITHUB_TOKEN).
	GitHubToken string `yaml:"github_token"`
	// YouTubeAPIKey authenticates YouTube Data API calls (YT_API_KEY).
	YouTubeAPIKey string `yaml:"youtube_api_key"`
	// HFToken authenticates Hugging Face hub downloads (HF_TOKEN).
	HFToken string `yaml:"hf_token"`
	// RatePerSecond caps outbound tool requests; 0 disables limiting.
	RatePerSecond float64 `yaml:"rate_per_second" env:"TOOLS_RATE_PER_SECOND"`
}

// CacheConfig holds local cache settings.
type CacheConfig struct {
	// Dir is the cache root (CACHE_DIR).
	Dir string `yaml:"dir"`
}

// OutputConfig holds result output settings.
type OutputConfig struct {
	// Dir is the result output root (OUTPUT_DIR).
	Dir string `yaml:"dir"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host            string        `yaml:"host" env:"HOST"`
	Port            int           `yaml:"port" env:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string { return fmt.Sprintf("%s:%d", s.Host, s.Port) }

// RedisConfig configures the optional call-history store. An empty Addr
// disables history persistence.
type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"ADDR"`
	Password string        `yaml:"password" env:"PASSWORD"`
	DB       int           `yaml:"db" env:"DB"`
	TTL      time.Duration `yaml:"ttl" env:"TTL"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level: debug, info, warn, error.
	Level string `yaml:"level" env:"LEVEL"`
	// Format: json, console.
	Format string `yaml:"format" env:"FORMAT"`
}

// BenchConfig configures benchmark execution.
type BenchConfig struct {
	// Dataset is the metadata.jsonl path; empty means CACHE_DIR/gaia/metadata.jsonl.
	Dataset string `yaml:"dataset" env:"DATASET"`
	// Concurrency is the suite worker count.
	Concurrency int `yaml:"concurrency" env:"CONCURRENCY"`
	// TaskTimeout bounds a single benchmark task end to end.
	TaskTimeout time.Duration `yaml:"task_timeout" env:"TASK_TIMEOUT"`
	// Resume skips tasks already recorded in the checkpoint.
	Resume bool `yaml:"resume" env:"RESUME"`
	// MaxRounds caps the master agent's reasoning rounds per task.
	MaxRounds int `yaml:"max_rounds" env:"MAX_ROUNDS"`
}

// Validate checks invariants that would otherwise surface mid-run.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, "invalid server port")
	}
	if c.Bench.Concurrency <= 0 {
		errs = append(errs, "bench concurrency must be positive")
	}
	if c.Bench.MaxRounds <= 0 {
		errs = append(errs, "bench max_rounds must be positive")
	}
	if strings.TrimSpace(c.Cache.Dir) == "" {
		errs = append(errs, "cache dir must not be empty")
	}
	if strings.TrimSpace(c.Output.Dir) == "" {
		errs = append(errs, "output dir must not be empty")
	}
	for _, m := range c.Models.All() {
		if m.Enabled() && strings.TrimSpace(m.BaseURL) == "" {
			errs = append(errs, fmt.Sprintf("model %s: base_url must not be empty", m.Name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}
	return nil
}
