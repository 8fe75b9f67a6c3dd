// Package config layers the toolkit configuration: built-in defaults,
// then an optional YAML file, then environment variables. Command-line
// flags sit above all three and are merged by the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Sentinel errors for configuration problems callers may branch on.
var (
	ErrPartialCredentials = errors.New("config: api_username and api_token must be set together")
	ErrInvalidBaseURL     = errors.New("config: base_url must start with http:// or https://")
)

// Config holds every tunable of the toolkit.
type Config struct {
	// BaseURL is the UFrame server root, e.g.
	// https://ooinet.oceanobservatories.org.
	BaseURL string `yaml:"base_url"`
	// User is the OOINet account name stamped on data requests.
	User  string `yaml:"user"`
	Email string `yaml:"email"`
	// APIUsername and APIToken are the m2m API credentials issued with
	// the account.
	APIUsername string `yaml:"api_username"`
	APIToken    string `yaml:"api_token"`
	// Timeout is the per-request HTTP timeout in seconds.
	Timeout  int    `yaml:"timeout"`
	LogLevel string `yaml:"loglevel"`
	// Direct addresses the service ports directly instead of the
	// /api/m2m gateway.
	Direct    bool `yaml:"direct"`
	Workers   int  `yaml:"workers"`
	RateLimit int  `yaml:"rate_limit"`
	// MetricsAddr serves Prometheus exposition during batch sends when
	// set, e.g. ":9090".
	MetricsAddr string `yaml:"metrics_addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Timeout:  120,
		LogLevel: "warning",
		Workers:  1,
	}
}

// Load builds the configuration from defaults, the YAML file at path when
// path is non-empty, and environment variables, in that precedence order.
func Load(path string) (*Config, error) {
	c := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(c); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("UFRAME_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("UFRAME_USER"); v != "" {
		c.User = v
	}
	if v := os.Getenv("UFRAME_API_USERNAME"); v != "" {
		c.APIUsername = v
	}
	if v := os.Getenv("UFRAME_API_TOKEN"); v != "" {
		c.APIToken = v
	}
	if v := os.Getenv("UFRAME_TIMEOUT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: UFRAME_TIMEOUT: %w", err)
		}
		c.Timeout = n
	}
	return nil
}

// Validate checks the merged configuration. The base URL is optional
// here; commands that talk to the server require it at client build time.
func (c *Config) Validate() error {
	if c.BaseURL != "" && !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.BaseURL)
	}
	if (c.APIUsername == "") != (c.APIToken == "") {
		return ErrPartialCredentials
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be positive, got %d", c.Timeout)
	}
	if c.Workers < 1 {
		return fmt.Errorf("config: workers must be at least 1, got %d", c.Workers)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("config: rate_limit must not be negative, got %d", c.RateLimit)
	}
	return nil
}

// TimeoutDuration returns the HTTP timeout as a duration.
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}
