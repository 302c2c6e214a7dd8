package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Text generation providers.
const (
	// ProviderOllama uses a local Ollama server.
	ProviderOllama = "ollama"
	// ProviderOpenAI uses the OpenAI API.
	ProviderOpenAI = "openai"
	// ProviderAnthropic uses the Anthropic API.
	ProviderAnthropic = "anthropic"
)

// Config holds all configuration values.
type Config struct {
	// Redis connection
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Admission control
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Job store
	JobTTL time.Duration

	// Orchestration
	MaxWorkers       int // agents running at once, 0 = whole roster
	AgentFileWorkers int // files one agent analyzes at once

	// Text generation
	LLMProvider     string
	LLMModel        string
	OllamaHost      string
	OpenAIAPIKey    string
	AnthropicAPIKey string

	// Agent roster
	RosterPath string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables. A .env file in
// the working directory is merged in first; a missing file is fine.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "error", err)
	}

	return Config{
		RedisAddr:     getEnv("COUNCIL_REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("COUNCIL_REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("COUNCIL_REDIS_DB", 0),

		RateLimitRequests: getEnvInt("COUNCIL_RATE_LIMIT_REQUESTS", 10),
		RateLimitWindow:   time.Duration(getEnvInt("COUNCIL_RATE_LIMIT_WINDOW", 60)) * time.Second,

		JobTTL: time.Duration(getEnvInt("COUNCIL_JOB_TTL", 86400)) * time.Second,

		MaxWorkers:       getEnvInt("COUNCIL_MAX_WORKERS", 0),
		AgentFileWorkers: getEnvInt("COUNCIL_AGENT_FILE_WORKERS", 5),

		LLMProvider:     getEnv("COUNCIL_LLM_PROVIDER", ProviderOllama),
		LLMModel:        getEnv("COUNCIL_LLM_MODEL", "llama3.2"),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),

		RosterPath: getEnv("COUNCIL_ROSTER", ""),

		LogFile:  getEnv("COUNCIL_LOG_FILE", "/tmp/council.log"),
		LogLevel: parseLogLevel(getEnv("COUNCIL_LOG_LEVEL", "INFO")),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		slog.Warn("ignoring non-numeric config value", "key", key, "value", val)
		return defaultVal
	}
	return n
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
