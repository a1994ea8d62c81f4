package configs

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

const (
	AuthModeHeader = "header"
	AuthModeBearer = "bearer"

	defaultPort = 8000
	minKeyLen   = 20
)

// Seconds is a duration given either as a bare number of seconds ("30",
// "2.5") or as a Go duration string ("30s").
type Seconds time.Duration

// Decode implements envconfig.Decoder.
func (s *Seconds) Decode(value string) error {
	value = strings.TrimSpace(value)
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		*s = Seconds(time.Duration(f * float64(time.Second)))
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid duration %q", value)
	}
	*s = Seconds(d)
	return nil
}

func (s Seconds) Duration() time.Duration { return time.Duration(s) }

// Config holds the application configuration. Values come from, in order of
// precedence: the process environment, a .env file, the YAML file named by
// CONFIG_FILE, and the defaults below.
type Config struct {
	ConfigFilePath string `envconfig:"CONFIG_FILE"`

	// IntakeQ
	BaseURL    string  `envconfig:"INTAKEQ_BASE_URL" default:"https://intakeq.com/api/v1"`
	APIKey     string  `envconfig:"INTAKEQ_API_KEY"`
	APITimeout Seconds `envconfig:"INTAKEQ_API_TIMEOUT" default:"30"`

	// Facade auth
	AuthMode          string `envconfig:"INTAKEQ_AUTH_MODE"`
	BearerToken       string `envconfig:"INTAKEQ_BEARER_TOKEN"`
	LegacyBearerToken string `envconfig:"VAPI_AUTH_TOKEN"`

	// Server
	ServerName         string        `envconfig:"SERVER_NAME" default:"intakeq-mcp-server"`
	ServerVersion      string        `envconfig:"SERVER_VERSION" default:"1.0.0"`
	Environment        string        `envconfig:"ENVIRONMENT" default:"production"`
	Host               string        `envconfig:"HOST" default:"0.0.0.0"`
	Port               int           `envconfig:"PORT" default:"8000"`
	AllowedOrigins     []string      `envconfig:"ALLOWED_ORIGINS" default:"*"`
	RateLimitRequests  int           `envconfig:"RATE_LIMIT_REQUESTS" default:"0"`
	RateLimitPeriod    Seconds       `envconfig:"RATE_LIMIT_PERIOD" default:"60"`
	DefaultPageSize    int           `envconfig:"DEFAULT_PAGE_SIZE" default:"100"`
	MaxPageSize        int           `envconfig:"MAX_PAGE_SIZE" default:"100"`
	ShutdownTimeout    time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
	ServerReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	ServerWriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"60s"`
	ServerIdleTimeout  time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"120s"`

	// Logging and telemetry
	LogLevel                 string `envconfig:"LOG_LEVEL"`
	LogFile                  string `envconfig:"LOG_FILE" default:"/tmp/intakeq-mcp.log"`
	OtelExporterOtlpEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelExporterOtlpInsecure bool   `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"true"`
}

// Load reads the configuration. A value that does not parse is logged and
// replaced by its default; only an unreadable config file is an error.
func Load() (*Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err == nil {
		slog.Info("Loaded environment file.", "path", envFile)
	} else if !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to read environment file.", "path", envFile, slog.Any("error", err))
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFile(path); err != nil {
			return nil, err
		}
		slog.Info("Loaded configuration from file.", "path", path)
	}

	var cfg Config
	if err := process(&cfg); err != nil {
		return nil, err
	}
	cfg.Validate()
	return &cfg, nil
}

// process runs envconfig, dropping each variable that fails to parse so the
// field falls back to its default.
func process(cfg *Config) error {
	for attempt := 0; attempt < 64; attempt++ {
		err := envconfig.Process("", cfg)
		if err == nil {
			return nil
		}
		var pe *envconfig.ParseError
		if !errors.As(err, &pe) {
			return fmt.Errorf("failed to process environment variables: %w", err)
		}
		slog.Warn("Invalid configuration value, using default.",
			slog.String("key", pe.KeyName),
			slog.String("value", pe.Value),
			slog.Any("error", pe.Err),
		)
		if err := os.Unsetenv(pe.KeyName); err != nil {
			return fmt.Errorf("failed to reset %s: %w", pe.KeyName, err)
		}
		*cfg = Config{}
	}
	return errors.New("too many invalid configuration values")
}

// applyFile exports the keys of a flat YAML file into the environment unless
// the environment already sets them.
func applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	values := map[string]any{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("failed to unmarshal config file '%s': %w", path, err)
	}
	for key, raw := range values {
		key = strings.ToUpper(key)
		if _, set := os.LookupEnv(key); set || raw == nil {
			continue
		}
		var value string
		if list, ok := raw.([]any); ok {
			value = strings.Join(cast.ToStringSlice(list), ",")
		} else if value, err = cast.ToStringE(raw); err != nil {
			slog.Warn("Ignoring config file entry.", "key", key, slog.Any("error", err))
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("failed to apply %s: %w", key, err)
		}
	}
	return nil
}

// Validate repairs out-of-range values and resolves derived settings. It
// logs what it changes and never fails.
func (c *Config) Validate() {
	if c.Port < 1 || c.Port > 65535 {
		slog.Warn("Port out of range, using default.", "port", c.Port, "default", defaultPort)
		c.Port = defaultPort
	}
	if c.LogLevel != "" && !validLevel(c.LogLevel) {
		slog.Warn("Unknown log level, using info.", "level", c.LogLevel)
		c.LogLevel = "info"
	}
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = 100
	}
	if c.DefaultPageSize <= 0 || c.DefaultPageSize > c.MaxPageSize {
		c.DefaultPageSize = c.MaxPageSize
	}

	origins := c.AllowedOrigins[:0]
	for _, o := range c.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.AllowedOrigins = origins

	if c.BearerToken == "" {
		c.BearerToken = c.LegacyBearerToken
	}
	switch strings.ToLower(c.AuthMode) {
	case AuthModeHeader, AuthModeBearer:
		c.AuthMode = strings.ToLower(c.AuthMode)
	case "":
		c.AuthMode = AuthModeHeader
		if c.BearerToken != "" {
			c.AuthMode = AuthModeBearer
		}
	default:
		slog.Warn("Unknown auth mode, using header.", "mode", c.AuthMode)
		c.AuthMode = AuthModeHeader
	}
}

// Warnings lists non-fatal problems worth reporting at startup.
func (c *Config) Warnings() []string {
	var out []string
	switch {
	case c.APIKey == "":
		out = append(out, "INTAKEQ_API_KEY is not set; every call needs a per-request key")
	case !ValidAPIKey(c.APIKey):
		out = append(out, "INTAKEQ_API_KEY looks too short to be an IntakeQ key")
	}
	if c.AuthMode == AuthModeBearer && c.BearerToken == "" {
		out = append(out, "bearer auth mode without INTAKEQ_BEARER_TOKEN; the HTTP API is not gated")
	}
	if !c.IsDevelopment() {
		for _, o := range c.AllowedOrigins {
			if o == "*" {
				out = append(out, "ALLOWED_ORIGINS allows every origin in production")
				break
			}
		}
	}
	return out
}

// ValidAPIKey reports whether key has the shape of an IntakeQ API key.
func ValidAPIKey(key string) bool {
	return len(strings.TrimSpace(key)) >= minKeyLen
}

func validLevel(s string) bool {
	switch strings.ToLower(s) {
	case "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

// IsDevelopment reports whether ENVIRONMENT is development.
func (c *Config) IsDevelopment() bool {
	e := strings.ToLower(c.Environment)
	return e == "development" || e == "dev"
}

// ParsedLogLevel returns the slog.Level based on the configured LogLevel
// string. Unset means debug in development and info otherwise.
func (c *Config) ParsedLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "":
		if c.IsDevelopment() {
			return slog.LevelDebug
		}
		return slog.LevelInfo
	default:
		return slog.LevelInfo
	}
}

// ListenAddr is the host:port the HTTP servers bind to.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
