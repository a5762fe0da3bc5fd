package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                  string
	DBPath                string
	LogLevel              string
	BackendURL            string
	BackendTimeoutSeconds int
	JWTSecret             string
	SessionTTLHours       int
	RememberMeDays        int
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	GradingDelayMS        int
	GenerationDelayMS     int
	GenerationWorkerCount int
	GenerationQueueSize   int
	PageSize              int
	SeedOnStart           bool
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                  envOr("ADDR", ":8080"),
		DBPath:                envOr("DB_PATH", "file:codedrill.db"),
		LogLevel:              envOr("LOG_LEVEL", "INFO"),
		BackendURL:            envOr("BACKEND_URL", "http://localhost:3001"),
		BackendTimeoutSeconds: envIntOr("BACKEND_TIMEOUT_SECONDS", 10),
		JWTSecret:             envOr("JWT_SECRET", "codedrill-dev-secret"),
		SessionTTLHours:       envIntOr("SESSION_TTL_HOURS", 12),
		RememberMeDays:        envIntOr("REMEMBER_ME_DAYS", 7),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:               envIntOr("REDIS_DB", 0),
		GradingDelayMS:        envIntOr("GRADING_DELAY_MS", 1500),
		GenerationDelayMS:     envIntOr("GENERATION_DELAY_MS", 2000),
		GenerationWorkerCount: envIntOr("GENERATION_WORKER_COUNT", 2),
		GenerationQueueSize:   envIntOr("GENERATION_QUEUE_SIZE", 16),
		PageSize:              envIntOr("PAGE_SIZE", 6),
		SeedOnStart:           envBoolOr("SEED_ON_START", true),
	}
}

// Validate reports every invalid setting, naming each offending key.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("DB_PATH cannot be empty"))
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR (got %q)", c.LogLevel))
	}
	if u, err := url.Parse(c.BackendURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("BACKEND_URL must be an absolute URL (got %q)", c.BackendURL))
	}
	if c.BackendTimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("BACKEND_TIMEOUT_SECONDS must be positive (got %d)", c.BackendTimeoutSeconds))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET cannot be empty"))
	}
	if c.SessionTTLHours <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL_HOURS must be positive (got %d)", c.SessionTTLHours))
	}
	if c.RememberMeDays <= 0 {
		errs = append(errs, fmt.Errorf("REMEMBER_ME_DAYS must be positive (got %d)", c.RememberMeDays))
	}
	if c.RedisDB < 0 {
		errs = append(errs, fmt.Errorf("REDIS_DB cannot be negative (got %d)", c.RedisDB))
	}
	if c.GradingDelayMS < 0 {
		errs = append(errs, fmt.Errorf("GRADING_DELAY_MS cannot be negative (got %d)", c.GradingDelayMS))
	}
	if c.GenerationDelayMS < 0 {
		errs = append(errs, fmt.Errorf("GENERATION_DELAY_MS cannot be negative (got %d)", c.GenerationDelayMS))
	}
	if c.GenerationWorkerCount <= 0 {
		errs = append(errs, fmt.Errorf("GENERATION_WORKER_COUNT must be positive (got %d)", c.GenerationWorkerCount))
	}
	if c.GenerationQueueSize <= 0 {
		errs = append(errs, fmt.Errorf("GENERATION_QUEUE_SIZE must be positive (got %d)", c.GenerationQueueSize))
	}
	if c.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("PAGE_SIZE must be positive (got %d)", c.PageSize))
	}

	return errors.Join(errs...)
}

func (c Config) BackendTimeout() time.Duration {
	return time.Duration(c.BackendTimeoutSeconds) * time.Second
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

func (c Config) RememberMeTTL() time.Duration {
	return time.Duration(c.RememberMeDays) * 24 * time.Hour
}

func (c Config) GradingDelay() time.Duration {
	return time.Duration(c.GradingDelayMS) * time.Millisecond
}

func (c Config) GenerationDelay() time.Duration {
	return time.Duration(c.GenerationDelayMS) * time.Millisecond
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("invalid value for %s=%q, using default %t", key, v, def)
	}
	return def
}
