// internal/config/config.go
//
// Runtime configuration for the pet-store admin client. Settings come from
// three layers, weakest first: built-in defaults, an optional YAML file,
// and environment variables. Command-line flags are applied on top by the
// entry point.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIBaseURL     = "http://localhost:5150"
	DefaultRequestTimeout = 5 * time.Second
	DefaultLogFile        = "petstore.log"

	// DefaultPath is where Load looks when no -config flag is given.
	DefaultPath = "petstore.yaml"
)

// Environment overrides, applied after the config file.
const (
	EnvAPIBaseURL     = "PETSTORE_API_URL"
	EnvRequestTimeout = "PETSTORE_TIMEOUT"
	EnvLogFile        = "PETSTORE_LOG_FILE"
)

const defaultConfigYAML = `# pet-store admin client configuration
# Base URL of the pet-store REST backend.
api_base_url: http://localhost:5150

# Per-request timeout (Go duration syntax, e.g. 5s, 1500ms).
request_timeout: 5s

# Diagnostic log file. API failures are recorded here; the UI only ever
# shows a generic error message.
log_file: petstore.log
`

// FileConfig models the YAML file. Durations are strings so the file can
// say "5s" or "1500ms".
type FileConfig struct {
	APIBaseURL     string `yaml:"api_base_url"`
	RequestTimeout string `yaml:"request_timeout"`
	LogFile        string `yaml:"log_file"`
}

// Config is the resolved runtime configuration.
type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	LogFile        string
}

// Load resolves the configuration from defaults, the YAML file at path (a
// missing file is fine) and the environment.
func Load(path string) (*Config, error) {
	cfg := &Config{
		APIBaseURL:     DefaultAPIBaseURL,
		RequestTimeout: DefaultRequestTimeout,
		LogFile:        DefaultLogFile,
	}

	if err := cfg.applyFile(path); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WriteDefault creates a commented config file at path. Existing files are
// left alone.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0644)
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed FileConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	if v := strings.TrimSpace(parsed.APIBaseURL); v != "" {
		c.APIBaseURL = v
	}
	if v := strings.TrimSpace(parsed.RequestTimeout); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: request_timeout: %w", err)
		}
		c.RequestTimeout = timeout
	}
	if v := strings.TrimSpace(parsed.LogFile); v != "" {
		c.LogFile = v
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvAPIBaseURL)); v != "" {
		c.APIBaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRequestTimeout)); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvRequestTimeout, err)
		}
		c.RequestTimeout = timeout
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		c.LogFile = v
	}
	return nil
}

func (c *Config) validate() error {
	if _, err := url.ParseRequestURI(c.APIBaseURL); err != nil {
		return fmt.Errorf("config: api_base_url %q: %w", c.APIBaseURL, err)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("config: request_timeout must be positive, got %s", c.RequestTimeout)
	}
	if strings.TrimSpace(c.LogFile) == "" {
		return fmt.Errorf("config: log_file is required")
	}
	return nil
}
