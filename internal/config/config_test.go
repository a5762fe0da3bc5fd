package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/codedrill/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		Addr:                  ":8080",
		DBPath:                "test.db",
		LogLevel:              "INFO",
		BackendURL:            "http://localhost:3001",
		BackendTimeoutSeconds: 10,
		JWTSecret:             "secret",
		SessionTTLHours:       12,
		RememberMeDays:        7,
		GradingDelayMS:        1500,
		GenerationDelayMS:     2000,
		GenerationWorkerCount: 2,
		GenerationQueueSize:   16,
		PageSize:              6,
		SeedOnStart:           true,
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_EmptyAddr(t *testing.T) {
	cfg := validConfig()
	cfg.Addr = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ADDR cannot be empty")
}

func TestValidate_EmptyDBPath(t *testing.T) {
	cfg := validConfig()
	cfg.DBPath = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PATH cannot be empty")
}

func TestValidate_BackendURL(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		valid bool
	}{
		{name: "http", url: "http://localhost:3001", valid: true},
		{name: "https with path", url: "https://api.example.com/v1", valid: true},
		{name: "empty", url: "", valid: false},
		{name: "relative", url: "/problems", valid: false},
		{name: "no scheme", url: "localhost:3001", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.BackendURL = tt.url

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "BACKEND_URL")
			}
		})
	}
}

func TestValidate_InvalidCounts(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*config.Config)
		expectedError string
	}{
		{
			name:          "zero generation workers",
			mutate:        func(c *config.Config) { c.GenerationWorkerCount = 0 },
			expectedError: "GENERATION_WORKER_COUNT",
		},
		{
			name:          "zero generation queue",
			mutate:        func(c *config.Config) { c.GenerationQueueSize = 0 },
			expectedError: "GENERATION_QUEUE_SIZE",
		},
		{
			name:          "zero page size",
			mutate:        func(c *config.Config) { c.PageSize = 0 },
			expectedError: "PAGE_SIZE",
		},
		{
			name:          "negative grading delay",
			mutate:        func(c *config.Config) { c.GradingDelayMS = -1 },
			expectedError: "GRADING_DELAY_MS",
		},
		{
			name:          "zero remember me days",
			mutate:        func(c *config.Config) { c.RememberMeDays = 0 },
			expectedError: "REMEMBER_ME_DAYS",
		},
		{
			name:          "empty jwt secret",
			mutate:        func(c *config.Config) { c.JWTSecret = "" },
			expectedError: "JWT_SECRET",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedError)
		})
	}
}

func TestValidate_LogLevel(t *testing.T) {
	for _, level := range []string{"DEBUG", "INFO", "WARN", "ERROR", "debug"} {
		t.Run(level, func(t *testing.T) {
			cfg := validConfig()
			cfg.LogLevel = level
			assert.NoError(t, cfg.Validate())
		})
	}

	for _, level := range []string{"", "INVALID"} {
		t.Run("invalid "+level, func(t *testing.T) {
			cfg := validConfig()
			cfg.LogLevel = level

			err := cfg.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "LOG_LEVEL")
		})
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := config.Config{LogLevel: "INVALID"}

	err := cfg.Validate()
	require.Error(t, err)

	errStr := err.Error()
	assert.Contains(t, errStr, "ADDR cannot be empty")
	assert.Contains(t, errStr, "DB_PATH cannot be empty")
	assert.Contains(t, errStr, "LOG_LEVEL")
	assert.Contains(t, errStr, "BACKEND_URL")
	assert.Contains(t, errStr, "GENERATION_WORKER_COUNT")
	assert.Contains(t, errStr, "PAGE_SIZE")
}

func TestDurations(t *testing.T) {
	cfg := validConfig()

	assert.Equal(t, 12*time.Hour, cfg.SessionTTL())
	assert.Equal(t, 7*24*time.Hour, cfg.RememberMeTTL())
	assert.Equal(t, 1500*time.Millisecond, cfg.GradingDelay())
	assert.Equal(t, 10*time.Second, cfg.BackendTimeout())
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("DB_PATH", "custom.db")
	t.Setenv("PAGE_SIZE", "12")
	t.Setenv("SEED_ON_START", "false")
	t.Setenv("GENERATION_QUEUE_SIZE", "not-a-number")

	cfg := config.Load()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "custom.db", cfg.DBPath)
	assert.Equal(t, 12, cfg.PageSize)
	assert.False(t, cfg.SeedOnStart)
	assert.Equal(t, 16, cfg.GenerationQueueSize)
}
