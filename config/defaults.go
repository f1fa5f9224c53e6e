package config

import "time"

// DefaultConfig returns the built-in defaults. YAML files and environment
// variables layer on top of these.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:    "oxygent",
			Version: "1.0.0",
		},
		Models: ModelsConfig{
			GPT4o: ModelConfig{
				Name:        "gpt-4o",
				BaseURL:     "https://api.openai.com/v1",
				Model:       "gpt-4o",
				Temperature: 0.01,
				Concurrency: 4,
				Timeout:     240 * time.Second,
				MaxRetries:  3,
			},
			Claude: ModelConfig{
				Name:        "claude",
				BaseURL:     "https://api.anthropic.com/v1",
				Model:       "claude-sonnet-4-20250514",
				Temperature: 0.0,
				Concurrency: 4,
				Timeout:     240 * time.Second,
				MaxRetries:  3,
			},
			DeepSeekV3: ModelConfig{
				Name:        "deepseek-v3",
				BaseURL:     "https://api.deepseek.com/v1",
				Model:       "deepseek-chat",
				Temperature: 0.01,
				Concurrency: 4,
				Timeout:     240 * time.Second,
				MaxRetries:  3,
			},
		},
		Tools: ToolsConfig{
			RatePerSecond: 5,
		},
		Cache: CacheConfig{
			Dir: "./cache_dir",
		},
		Output: OutputConfig{
			Dir: "./output",
		},
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    10 * time.Minute,
			ShutdownTimeout: 15 * time.Second,
		},
		Redis: RedisConfig{
			TTL: 24 * time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Bench: BenchConfig{
			Concurrency: 4,
			TaskTimeout: 30 * time.Minute,
			Resume:      true,
			MaxRounds:   10,
		},
	}
}
