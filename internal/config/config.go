// Package config loads runtime configuration. Defaults are overridden first
// by an optional YAML file (CONFIG_FILE) and then by environment variables,
// so deployments can ship a base file and tweak individual keys per instance.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	APIPort  string `yaml:"api_port"`
	LogLevel string `yaml:"log_level"`

	OllamaURL            string  `yaml:"ollama_url"`
	OllamaModel          string  `yaml:"ollama_model"`
	LLMTimeoutSeconds    int     `yaml:"llm_timeout_seconds"`
	LLMRequestsPerSecond float64 `yaml:"llm_requests_per_second"`
	LLMBurst             int     `yaml:"llm_burst"`

	NATSURL     string `yaml:"nats_url"`
	NATSSubject string `yaml:"nats_subject"`

	ClassifyMinTextChars int     `yaml:"classify_min_text_chars"`
	ClassifyUnknownBelow float64 `yaml:"classify_unknown_below"`
	WarnConfidenceBelow  float64 `yaml:"warn_confidence_below"`
	MatchMinSimilarity   float64 `yaml:"match_min_similarity"`
	ClassificationWeight float64 `yaml:"classification_weight"`
	ExtractionWeight     float64 `yaml:"extraction_weight"`

	RetryMaxAttempts        int     `yaml:"retry_max_attempts"`
	RetryInitialDelayMillis int     `yaml:"retry_initial_delay_millis"`
	RetryMaxDelayMillis     int     `yaml:"retry_max_delay_millis"`
	BreakerEnabled          bool    `yaml:"breaker_enabled"`
	BreakerMinRequests      int     `yaml:"breaker_min_requests"`
	BreakerFailureRatio     float64 `yaml:"breaker_failure_ratio"`
	BreakerOpenSeconds      int     `yaml:"breaker_open_seconds"`
	BreakerHalfOpenRequests int     `yaml:"breaker_half_open_requests"`
}

func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.APIPort = mustEnv("API_PORT", cfg.APIPort)
	cfg.LogLevel = mustEnv("LOG_LEVEL", cfg.LogLevel)

	cfg.OllamaURL = mustEnv("OLLAMA_URL", cfg.OllamaURL)
	cfg.OllamaModel = mustEnv("OLLAMA_MODEL", cfg.OllamaModel)
	cfg.LLMTimeoutSeconds = mustEnvInt("LLM_TIMEOUT_SECONDS", cfg.LLMTimeoutSeconds)
	cfg.LLMRequestsPerSecond = mustEnvFloat("LLM_REQUESTS_PER_SECOND", cfg.LLMRequestsPerSecond)
	cfg.LLMBurst = mustEnvInt("LLM_BURST", cfg.LLMBurst)

	cfg.NATSURL = mustEnv("NATS_URL", cfg.NATSURL)
	cfg.NATSSubject = mustEnv("NATS_SUBJECT", cfg.NATSSubject)

	cfg.ClassifyMinTextChars = mustEnvInt("CLASSIFY_MIN_TEXT_CHARS", cfg.ClassifyMinTextChars)
	cfg.ClassifyUnknownBelow = mustEnvFloat("CLASSIFY_UNKNOWN_BELOW", cfg.ClassifyUnknownBelow)
	cfg.WarnConfidenceBelow = mustEnvFloat("WARN_CONFIDENCE_BELOW", cfg.WarnConfidenceBelow)
	cfg.MatchMinSimilarity = mustEnvFloat("MATCH_MIN_SIMILARITY", cfg.MatchMinSimilarity)
	cfg.ClassificationWeight = mustEnvFloat("CLASSIFICATION_WEIGHT", cfg.ClassificationWeight)
	cfg.ExtractionWeight = mustEnvFloat("EXTRACTION_WEIGHT", cfg.ExtractionWeight)

	cfg.RetryMaxAttempts = mustEnvInt("RETRY_MAX_ATTEMPTS", cfg.RetryMaxAttempts)
	cfg.RetryInitialDelayMillis = mustEnvInt("RETRY_INITIAL_DELAY_MILLIS", cfg.RetryInitialDelayMillis)
	cfg.RetryMaxDelayMillis = mustEnvInt("RETRY_MAX_DELAY_MILLIS", cfg.RetryMaxDelayMillis)
	cfg.BreakerEnabled = mustEnvBool("BREAKER_ENABLED", cfg.BreakerEnabled)
	cfg.BreakerMinRequests = mustEnvInt("BREAKER_MIN_REQUESTS", cfg.BreakerMinRequests)
	cfg.BreakerFailureRatio = mustEnvFloat("BREAKER_FAILURE_RATIO", cfg.BreakerFailureRatio)
	cfg.BreakerOpenSeconds = mustEnvInt("BREAKER_OPEN_SECONDS", cfg.BreakerOpenSeconds)
	cfg.BreakerHalfOpenRequests = mustEnvInt("BREAKER_HALF_OPEN_REQUESTS", cfg.BreakerHalfOpenRequests)

	return cfg, nil
}

func defaults() Config {
	return Config{
		APIPort:  "8080",
		LogLevel: "info",

		OllamaURL:            "http://localhost:11434",
		OllamaModel:          "llama3.1:8b",
		LLMTimeoutSeconds:    45,
		LLMRequestsPerSecond: 4,
		LLMBurst:             8,

		NATSURL:     "",
		NATSSubject: "claims.decisions",

		ClassifyMinTextChars: 20,
		ClassifyUnknownBelow: 0.35,
		WarnConfidenceBelow:  0.6,
		MatchMinSimilarity:   0.90,
		ClassificationWeight: 0.4,
		ExtractionWeight:     0.6,

		RetryMaxAttempts:        3,
		RetryInitialDelayMillis: 100,
		RetryMaxDelayMillis:     400,
		BreakerEnabled:          true,
		BreakerMinRequests:      10,
		BreakerFailureRatio:     0.5,
		BreakerOpenSeconds:      30,
		BreakerHalfOpenRequests: 2,
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
