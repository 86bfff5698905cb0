package stapi

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stlmpp/stapi/internal/ids"
)

// Config holds the runtime configuration of a stapi server
type Config struct {
	// Host is the host to bind to (default: "")
	Host string `yaml:"host"`

	// Port is the port to listen on (default: $PORT or 3000)
	Port string `yaml:"port"`

	// Server is the transport adapter: echo, gin, fiber or mux (default: echo)
	Server string `yaml:"server"`

	// ShutdownTimeout is the timeout for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// LogLevel is the minimum zap level (default: info)
	LogLevel string `yaml:"log_level"`

	// Development switches logging to the development console format
	Development bool `yaml:"development"`

	// IDFormat is the format of generated correlation ids: uuid or ulid
	IDFormat string `yaml:"id_format"`

	OpenAPI OpenAPIConfig `yaml:"openapi"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// OpenAPIConfig describes the API in the generated document
type OpenAPIConfig struct {
	Title       string `yaml:"title"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

var knownServers = map[string]bool{"echo": true, "gin": true, "fiber": true, "mux": true}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	return &Config{
		Port:            port,
		Server:          "echo",
		ShutdownTimeout: 30 * time.Second,
		LogLevel:        "info",
		IDFormat:        ids.FormatUUID,
		OpenAPI: OpenAPIConfig{
			Title:   "App",
			Version: "1.0.0",
		},
		Metrics: MetricsConfig{
			Address: ":9090",
		},
	}
}

// LoadConfig reads the YAML file at path over the defaults, then applies
// environment overrides (PORT and STAPI_*). An empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file '%s': %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	// Later entries win: STAPI_PORT overrides PORT.
	overrides := []struct {
		key string
		dst *string
	}{
		{"PORT", &c.Port},
		{"STAPI_PORT", &c.Port},
		{"STAPI_HOST", &c.Host},
		{"STAPI_SERVER", &c.Server},
		{"STAPI_LOG_LEVEL", &c.LogLevel},
		{"STAPI_ID_FORMAT", &c.IDFormat},
		{"STAPI_METRICS_ADDRESS", &c.Metrics.Address},
	}
	for _, o := range overrides {
		if value, ok := os.LookupEnv(o.key); ok && value != "" {
			*o.dst = value
		}
	}

	bools := map[string]*bool{
		"STAPI_DEVELOPMENT":     &c.Development,
		"STAPI_METRICS_ENABLED": &c.Metrics.Enabled,
	}
	for key, dst := range bools {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			parsed, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = parsed
		}
	}

	if value, ok := os.LookupEnv("STAPI_SHUTDOWN_TIMEOUT"); ok && value != "" {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid STAPI_SHUTDOWN_TIMEOUT: %w", err)
		}
		c.ShutdownTimeout = timeout
	}
	return nil
}

// Validate checks the configuration values
func (c *Config) Validate() error {
	var errs []error
	if port, err := strconv.Atoi(c.Port); err != nil || port < 0 || port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %q", c.Port))
	}
	if !knownServers[c.Server] {
		errs = append(errs, fmt.Errorf("unknown server %q, expected echo, gin, fiber or mux", c.Server))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("shutdown timeout must be positive, got %s", c.ShutdownTimeout))
	}
	if _, err := ids.ForFormat(c.IDFormat); err != nil {
		errs = append(errs, err)
	}
	if c.Metrics.Enabled && c.Metrics.Address == "" {
		errs = append(errs, errors.New("metrics address is required when metrics are enabled"))
	}
	return errors.Join(errs...)
}

// Addr returns the listen address of the API server
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}
