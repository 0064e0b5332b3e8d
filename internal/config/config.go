package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	// Generator provider settings
	GeneratorProvider string
	AnthropicAPIKey   string
	VeniceAPIKey      string
	ModelName         string

	// Storage
	RedisURL string
	DataDir  string

	// Engine tuning
	Rating              string
	MaxPromptChars      int
	SocialTurnCap       int
	QuestLength         int
	NoConsecutiveCombat bool
	SessionResetUses    int
	GlobalResetTurns    int
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),

		GeneratorProvider: getEnv("GENERATOR_PROVIDER", "anthropic"),
		AnthropicAPIKey:   getEnv("ANTHROPIC_API_KEY", ""),
		VeniceAPIKey:      getEnv("VENICE_API_KEY", ""),
		ModelName:         getEnv("MODEL_NAME", "claude-sonnet-4-20250514"),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),
		DataDir:  getEnv("DATA_DIR", "./data"),

		Rating:              getEnv("CONTENT_RATING", "PG13"),
		NoConsecutiveCombat: getEnvBool("NO_CONSECUTIVE_COMBAT", true),
	}

	var err error
	if cfg.MaxPromptChars, err = getEnvInt("MAX_PROMPT_CHARS", 2000); err != nil {
		return nil, err
	}
	if cfg.SocialTurnCap, err = getEnvInt("SOCIAL_TURN_CAP", 3); err != nil {
		return nil, err
	}
	if cfg.QuestLength, err = getEnvInt("QUEST_LENGTH", 6); err != nil {
		return nil, err
	}
	if cfg.SessionResetUses, err = getEnvInt("SESSION_RESET_USES", 10); err != nil {
		return nil, err
	}
	if cfg.GlobalResetTurns, err = getEnvInt("GLOBAL_RESET_TURNS", 30); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
