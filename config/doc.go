// Package config loads the runtime configuration with the precedence
// defaults -> YAML file -> environment variables.
//
// The credential surface (MODEL_GPT4O, MODEL_CLAUDE, MODEL_DEEPSEEK_V3,
// GITHUB_TOKEN, YT_API_KEY, HF_TOKEN, CACHE_DIR, OUTPUT_DIR) is read
// verbatim from the environment, optionally seeded from a .env file that
// never overrides already-set process variables. YAML values may reference
// environment variables as ${VAR}.
package config
