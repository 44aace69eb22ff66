package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/systmms/storectl/internal/api"
	sterrors "github.com/systmms/storectl/internal/errors"
	"github.com/systmms/storectl/internal/logging"
	"gopkg.in/yaml.v3"
)

// Environment variable overrides. A local .env file is loaded first so
// per-project settings work without exporting anything.
const (
	EnvAPIURL       = "STORECTL_API_URL"
	EnvAPIToken     = "STORECTL_API_TOKEN"
	EnvPollInterval = "STORECTL_POLL_INTERVAL_MS"
)

// Config holds the runtime configuration
type Config struct {
	Path           string
	Logger         *logging.Logger
	NoColor        bool
	NonInteractive bool
	Definition     *Definition
}

// Definition represents the storectl.yaml structure
type Definition struct {
	APIURL           string `yaml:"api_url"`
	PollIntervalMS   int    `yaml:"poll_interval_ms,omitempty"`
	RequestTimeoutMS int    `yaml:"request_timeout_ms,omitempty"`
	DefaultEngine    string `yaml:"default_engine,omitempty"`
	// BaseDomain is where provisioned storefronts become addressable,
	// e.g. 127.0.0.1.nip.io for a local cluster.
	BaseDomain string `yaml:"base_domain,omitempty"`
	APIToken   string `yaml:"api_token,omitempty"`
}

const (
	defaultPollIntervalMS   = 2000
	defaultRequestTimeoutMS = 10000
	defaultEngine           = string(api.EngineWooCommerce)
)

// Load reads storectl.yaml, applies .env and environment overrides, and
// validates the result. A missing file at the default path is fine as long
// as the API URL arrives via environment.
func (c *Config) Load() error {
	// Best-effort: a missing .env is the normal case.
	_ = godotenv.Load()

	def := &Definition{}

	data, err := os.ReadFile(c.Path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, def); err != nil {
			return sterrors.ConfigError{
				Field:      "file",
				Value:      c.Path,
				Message:    fmt.Sprintf("invalid YAML: %v", err),
				Suggestion: "Check for indentation errors and missing quotes",
			}
		}
	case os.IsNotExist(err):
		// Defaults + environment only.
	default:
		return fmt.Errorf("failed to read config file %s: %w", c.Path, err)
	}

	if v := os.Getenv(EnvAPIURL); v != "" {
		def.APIURL = v
	}
	if v := os.Getenv(EnvAPIToken); v != "" {
		def.APIToken = v
	}
	if v := os.Getenv(EnvPollInterval); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms <= 0 {
			return sterrors.ConfigError{
				Field:      EnvPollInterval,
				Value:      v,
				Message:    "poll interval must be a positive integer of milliseconds",
				Suggestion: "Use something like STORECTL_POLL_INTERVAL_MS=2000",
			}
		}
		def.PollIntervalMS = ms
	}

	if def.PollIntervalMS == 0 {
		def.PollIntervalMS = defaultPollIntervalMS
	}
	if def.RequestTimeoutMS == 0 {
		def.RequestTimeoutMS = defaultRequestTimeoutMS
	}
	if def.DefaultEngine == "" {
		def.DefaultEngine = defaultEngine
	}

	if err := def.validate(); err != nil {
		return err
	}

	c.Definition = def
	return nil
}

func (d *Definition) validate() error {
	if d.APIURL == "" {
		return sterrors.ConfigError{
			Field:      "api_url",
			Message:    "provisioning API URL is not configured",
			Suggestion: fmt.Sprintf("Set api_url in storectl.yaml or export %s", EnvAPIURL),
		}
	}
	parsed, err := url.Parse(d.APIURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return sterrors.ConfigError{
			Field:      "api_url",
			Value:      d.APIURL,
			Message:    "not a valid URL",
			Suggestion: "Use format: http://hostname:port",
		}
	}
	if !api.KnownEngine(api.Engine(d.DefaultEngine)) {
		return sterrors.ConfigError{
			Field:      "default_engine",
			Value:      d.DefaultEngine,
			Message:    "unknown engine",
			Suggestion: fmt.Sprintf("Supported engines: %s, %s", api.EngineWooCommerce, api.EngineMedusa),
		}
	}
	return nil
}

// PollInterval returns the configured cache refresh period.
func (d *Definition) PollInterval() time.Duration {
	return time.Duration(d.PollIntervalMS) * time.Millisecond
}

// RequestTimeout returns the per-request HTTP timeout.
func (d *Definition) RequestTimeout() time.Duration {
	return time.Duration(d.RequestTimeoutMS) * time.Millisecond
}
