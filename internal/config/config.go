package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

type AppConfig struct {
	Env      Environment
	Port     string
	LogLevel string
}

type RedisConfig struct {
	// URL enables the Redis cache when set; otherwise analyses are cached in
	// process memory.
	URL string
	TTL time.Duration
}

type GenerationConfig struct {
	DefaultMCQ       int
	DefaultTrueFalse int
	DefaultFillBlank int
	KeywordCount     int
	SentenceCount    int
	MinContentChars  int
	// Seed fixes the random source; 0 seeds from the clock.
	Seed           int64
	StopwordsFile  string
	NaiveTokenizer bool
	MaxUploadBytes int64
}

type QuizConfig struct {
	// SessionTTL evicts quiz sessions idle for longer than this.
	SessionTTL time.Duration
}

type Config struct {
	App        AppConfig
	Redis      RedisConfig
	Generation GenerationConfig
	Quiz       QuizConfig
	Events     EventConfig
}

func LoadConfig() (*Config, error) {
	// A missing .env file is fine; the environment still applies.
	_ = godotenv.Load()

	env := parseEnvironment(getEnv("APP_ENV", string(Development)))

	cfg := &Config{
		App: AppConfig{
			Env:      env,
			Port:     getEnv("PORT", "8080"),
			LogLevel: getLogLevel(env),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
			TTL: getEnvDuration("REDIS_TTL", time.Hour),
		},
		Generation: GenerationConfig{
			DefaultMCQ:       getEnvInt("GENERATION_DEFAULT_MCQ", 8),
			DefaultTrueFalse: getEnvInt("GENERATION_DEFAULT_TRUE_FALSE", 4),
			DefaultFillBlank: getEnvInt("GENERATION_DEFAULT_FILL_BLANK", 3),
			KeywordCount:     getEnvInt("GENERATION_KEYWORD_COUNT", 20),
			SentenceCount:    getEnvInt("GENERATION_SENTENCE_COUNT", 25),
			MinContentChars:  getEnvInt("GENERATION_MIN_CONTENT_CHARS", 100),
			Seed:             int64(getEnvInt("GENERATION_SEED", 0)),
			StopwordsFile:    getEnv("GENERATION_STOPWORDS_FILE", ""),
			NaiveTokenizer:   getEnvBool("GENERATION_NAIVE_TOKENIZER", false),
			MaxUploadBytes:   int64(getEnvInt("GENERATION_MAX_UPLOAD_BYTES", 20<<20)),
		},
		Quiz: QuizConfig{
			SessionTTL: getEnvDuration("QUIZ_SESSION_TTL", 2*time.Hour),
		},
		Events: EventConfig{
			Enabled:      getEnvBool("EVENTS_ENABLED", true),
			Publisher:    getEnv("EVENTS_PUBLISHER", "gochannel"),
			KafkaBrokers: getEnv("KAFKA_BROKERS", "localhost:9092"),
			Topic:        getEnv("EVENTS_TOPIC", "flashcards"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	g := c.Generation
	if g.DefaultMCQ < 0 || g.DefaultTrueFalse < 0 || g.DefaultFillBlank < 0 {
		return fmt.Errorf("default card quotas cannot be negative")
	}
	if g.DefaultMCQ+g.DefaultTrueFalse+g.DefaultFillBlank == 0 {
		return fmt.Errorf("default card quotas must request at least one card")
	}
	if g.KeywordCount < 1 || g.SentenceCount < 1 {
		return fmt.Errorf("GENERATION_KEYWORD_COUNT and GENERATION_SENTENCE_COUNT must be positive")
	}
	if g.MinContentChars < 0 {
		return fmt.Errorf("GENERATION_MIN_CONTENT_CHARS cannot be negative")
	}
	if g.MaxUploadBytes < 1 {
		return fmt.Errorf("GENERATION_MAX_UPLOAD_BYTES must be positive")
	}
	if c.Redis.TTL <= 0 {
		return fmt.Errorf("REDIS_TTL must be positive")
	}
	if c.Quiz.SessionTTL <= 0 {
		return fmt.Errorf("QUIZ_SESSION_TTL must be positive")
	}
	if c.App.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Env == Production
}

func parseEnvironment(envStr string) Environment {
	env := Environment(strings.ToLower(envStr))

	switch env {
	case Development, Production:
		return env
	default:
		return Development
	}
}

func getLogLevel(env Environment) string {
	if env == Production {
		return getEnv("LOG_LEVEL", "info")
	}
	return getEnv("LOG_LEVEL", "debug")
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
