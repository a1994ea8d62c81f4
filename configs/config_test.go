package configs_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i2y/intakeq-mcp/configs"
)

var keys = []string{
	"CONFIG_FILE", "ENV_FILE", "INTAKEQ_BASE_URL", "INTAKEQ_API_KEY", "INTAKEQ_API_TIMEOUT",
	"INTAKEQ_AUTH_MODE", "INTAKEQ_BEARER_TOKEN", "VAPI_AUTH_TOKEN", "SERVER_NAME",
	"SERVER_VERSION", "ENVIRONMENT", "HOST", "PORT", "ALLOWED_ORIGINS",
	"RATE_LIMIT_REQUESTS", "RATE_LIMIT_PERIOD", "DEFAULT_PAGE_SIZE", "MAX_PAGE_SIZE",
	"SHUTDOWN_TIMEOUT", "LOG_LEVEL", "LOG_FILE",
}

// cleanEnv clears every key Load reads and restores them afterwards.
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		if v, ok := os.LookupEnv(k); ok {
			t.Cleanup(func() { os.Setenv(k, v) })
		} else {
			t.Cleanup(func() { os.Unsetenv(k) })
		}
		os.Unsetenv(k)
	}
	os.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoad_Defaults(t *testing.T) {
	cleanEnv(t)

	cfg, err := configs.Load()
	require.NoError(t, err)

	assert.Equal(t, "https://intakeq.com/api/v1", cfg.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.APITimeout.Duration())
	assert.Equal(t, "intakeq-mcp-server", cfg.ServerName)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "0.0.0.0:8000", cfg.ListenAddr())
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, configs.AuthModeHeader, cfg.AuthMode)
	assert.Equal(t, 0, cfg.RateLimitRequests)
	assert.Equal(t, 100, cfg.DefaultPageSize)
	assert.Equal(t, slog.LevelInfo, cfg.ParsedLogLevel())
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		check func(t *testing.T, cfg *configs.Config)
	}{
		{
			name: "non-numeric port",
			env:  map[string]string{"PORT": "abc"},
			check: func(t *testing.T, cfg *configs.Config) {
				assert.Equal(t, 8000, cfg.Port)
			},
		},
		{
			name: "port out of range",
			env:  map[string]string{"PORT": "70000"},
			check: func(t *testing.T, cfg *configs.Config) {
				assert.Equal(t, 8000, cfg.Port)
			},
		},
		{
			name: "bad timeout and bad rate limit together",
			env:  map[string]string{"INTAKEQ_API_TIMEOUT": "soon", "RATE_LIMIT_REQUESTS": "many", "PORT": "9000"},
			check: func(t *testing.T, cfg *configs.Config) {
				assert.Equal(t, 30*time.Second, cfg.APITimeout.Duration())
				assert.Equal(t, 0, cfg.RateLimitRequests)
				assert.Equal(t, 9000, cfg.Port)
			},
		},
		{
			name: "unknown log level",
			env:  map[string]string{"LOG_LEVEL": "chatty"},
			check: func(t *testing.T, cfg *configs.Config) {
				assert.Equal(t, slog.LevelInfo, cfg.ParsedLogLevel())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanEnv(t)
			for k, v := range tt.env {
				os.Setenv(k, v)
			}
			cfg, err := configs.Load()
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestSeconds_Decode(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"30", 30 * time.Second, false},
		{"2.5", 2500 * time.Millisecond, false},
		{"1m", time.Minute, false},
		{" 45s ", 45 * time.Second, false},
		{"later", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var s configs.Seconds
			err := s.Decode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Duration())
		})
	}
}

func TestLoad_AuthMode(t *testing.T) {
	tests := []struct {
		name      string
		env       map[string]string
		wantMode  string
		wantToken string
	}{
		{"no token means header", nil, configs.AuthModeHeader, ""},
		{"token implies bearer", map[string]string{"INTAKEQ_BEARER_TOKEN": "tok"}, configs.AuthModeBearer, "tok"},
		{"legacy token name", map[string]string{"VAPI_AUTH_TOKEN": "old"}, configs.AuthModeBearer, "old"},
		{"explicit header wins", map[string]string{"INTAKEQ_BEARER_TOKEN": "tok", "INTAKEQ_AUTH_MODE": "HEADER"}, configs.AuthModeHeader, "tok"},
		{"unknown mode", map[string]string{"INTAKEQ_AUTH_MODE": "oauth"}, configs.AuthModeHeader, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanEnv(t)
			for k, v := range tt.env {
				os.Setenv(k, v)
			}
			cfg, err := configs.Load()
			require.NoError(t, err)
			assert.Equal(t, tt.wantMode, cfg.AuthMode)
			assert.Equal(t, tt.wantToken, cfg.BearerToken)
		})
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	cleanEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "intakeq.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server_name: from-file
port: 9100
allowed_origins:
  - https://a.example
  - https://b.example
rate_limit_requests: 10
`), 0o600))
	os.Setenv("CONFIG_FILE", path)
	os.Setenv("PORT", "9200")

	cfg, err := configs.Load()
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.ServerName)
	assert.Equal(t, 9200, cfg.Port, "environment overrides the file")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 10, cfg.RateLimitRequests)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	cleanEnv(t)
	os.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := configs.Load()
	assert.Error(t, err)
}

func TestLoad_EnvFile(t *testing.T) {
	cleanEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("INTAKEQ_API_KEY=abcdefghijklmnopqrstuvwxyz\nENVIRONMENT=development\n"), 0o600))
	os.Setenv("ENV_FILE", path)

	cfg, err := configs.Load()
	require.NoError(t, err)

	assert.Equal(t, "abcdefghijklmnopqrstuvwxyz", cfg.APIKey)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, slog.LevelDebug, cfg.ParsedLogLevel())
	assert.Empty(t, cfg.Warnings())
}

func TestConfig_Warnings(t *testing.T) {
	cfg := &configs.Config{
		APIKey:         "short",
		AuthMode:       configs.AuthModeBearer,
		Environment:    "production",
		AllowedOrigins: []string{"*"},
	}
	assert.Len(t, cfg.Warnings(), 3)

	assert.True(t, configs.ValidAPIKey("0123456789abcdef0123"))
	assert.False(t, configs.ValidAPIKey("  0123456789  "))
}
