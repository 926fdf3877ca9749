// Package config resolves the webhook CLI configuration from its layers:
// built-in defaults, the shared and local YAML files, a .env file and
// WEBHOOK_* environment variables. Command-line flags are applied by the cli
// package on top of the result.
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/charliek/webhook/internal/constants"
	"github.com/charliek/webhook/internal/domain"
)

// Config represents the top-level webhook configuration
type Config struct {
	Webhook WebhookConfig `yaml:"webhook"`

	// Sources lists the layers that contributed, lowest precedence first
	Sources []string `yaml:"-"`
}

// WebhookConfig holds the service location and command defaults
type WebhookConfig struct {
	BaseURL           string   `yaml:"base_url"`
	MonitorCount      int      `yaml:"monitor_count"`
	LogsCount         int      `yaml:"logs_count"`
	Interval          Duration `yaml:"interval"`
	ShowHeaders       bool     `yaml:"show_headers"`
	ShowFullBody      bool     `yaml:"show_full_body"`
	BodyPreviewLength int      `yaml:"body_preview_length"`
	RequestTimeout    Duration `yaml:"request_timeout"`
}

// rawConfig is one file layer. Pointer fields tell "not set" apart from a
// zero value so that a layer only overrides what it names.
type rawConfig struct {
	Webhook struct {
		BaseURL           *string   `yaml:"base_url"`
		MonitorCount      *int      `yaml:"monitor_count"`
		LogsCount         *int      `yaml:"logs_count"`
		Interval          *Duration `yaml:"interval"`
		ShowHeaders       *bool     `yaml:"show_headers"`
		ShowFullBody      *bool     `yaml:"show_full_body"`
		BodyPreviewLength *int      `yaml:"body_preview_length"`
		RequestTimeout    *Duration `yaml:"request_timeout"`
	} `yaml:"webhook"`
}

// Duration is a time.Duration that reads either a Go duration string ("3s",
// "500ms") or a plain number of seconds.
type Duration time.Duration

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// maxDurationSeconds is the largest number of seconds a time.Duration holds
const maxDurationSeconds = float64(math.MaxInt64) / float64(time.Second)

// ParseDuration parses a duration string, treating a bare number as seconds
func ParseDuration(s string) (Duration, error) {
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(secs) || math.IsInf(secs, 0) || math.Abs(secs) >= maxDurationSeconds {
			return 0, fmt.Errorf("invalid duration %q: out of range", s)
		}
		return Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return Duration(d), nil
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Webhook: WebhookConfig{
			BaseURL:           constants.DefaultBaseURL,
			MonitorCount:      constants.DefaultMonitorCount,
			LogsCount:         constants.DefaultLogsCount,
			Interval:          Duration(constants.DefaultInterval),
			BodyPreviewLength: constants.DefaultBodyPreviewLength,
			RequestTimeout:    Duration(constants.DefaultRequestTimeout),
		},
		Sources: []string{"defaults"},
	}
}

// Parse parses configuration from YAML bytes on top of the defaults
func Parse(data []byte) (*Config, error) {
	config := Default()
	if err := config.apply(data); err != nil {
		return nil, err
	}

	if err := Validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// apply overlays one YAML layer
func (c *Config) apply(data []byte) error {
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing yaml: %w", err)
	}

	w := raw.Webhook
	if w.BaseURL != nil {
		c.Webhook.BaseURL = *w.BaseURL
	}
	if w.MonitorCount != nil {
		c.Webhook.MonitorCount = *w.MonitorCount
	}
	if w.LogsCount != nil {
		c.Webhook.LogsCount = *w.LogsCount
	}
	if w.Interval != nil {
		c.Webhook.Interval = *w.Interval
	}
	if w.ShowHeaders != nil {
		c.Webhook.ShowHeaders = *w.ShowHeaders
	}
	if w.ShowFullBody != nil {
		c.Webhook.ShowFullBody = *w.ShowFullBody
	}
	if w.BodyPreviewLength != nil {
		c.Webhook.BodyPreviewLength = *w.BodyPreviewLength
	}
	if w.RequestTimeout != nil {
		c.Webhook.RequestTimeout = *w.RequestTimeout
	}
	return nil
}

// applyFile overlays the YAML file at path
func (c *Config) applyFile(path string) error {
	// Check file permissions for security
	if err := CheckFilePermissions(path); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := c.apply(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	c.Sources = append(c.Sources, path)
	return nil
}

// Marshal renders the resolved configuration as YAML
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// errInvalid wraps a problem with a single setting
func errInvalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, fmt.Sprintf(format, args...))
}
