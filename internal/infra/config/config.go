// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Engine   EngineConfig   `yaml:"engine"`
	Sink     SinkConfig     `yaml:"sink"`
	Policy   PolicyConfig   `yaml:"policy"`
	Resume   ResumeConfig   `yaml:"resume"`
	Report   ReportConfig   `yaml:"report"`
	Manifest []ManifestItem `yaml:"manifest" validate:"omitempty,dive"`
}

// EngineConfig represents sequencing engine configuration.
type EngineConfig struct {
	EventBuffer       int `yaml:"event_buffer" default:"16" validate:"gte=1,lte=1024"`
	ResolveTimeoutSec int `yaml:"resolve_timeout_sec" default:"30" validate:"gte=1,lte=600"`
}

// SinkConfig represents the timer sink configuration.
type SinkConfig struct {
	TickMs int `yaml:"tick_ms" default:"100" validate:"gte=10,lte=5000"`
}

// PolicyConfig selects the chain policy applied at end of item.
type PolicyConfig struct {
	Type     string         `yaml:"type" default:"linear" validate:"required,oneof=linear loop shuffle catalog"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// ResumeConfig represents session resume persistence.
type ResumeConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path" default:"playline.db"`
}

// ReportConfig represents play completion reporting.
type ReportConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Endpoint   string `yaml:"endpoint" validate:"omitempty,url"`
	TimeoutSec int    `yaml:"timeout_sec" default:"10" validate:"gte=1,lte=120"`
}

// ManifestItem describes one playable entry of the demo manifest.
type ManifestItem struct {
	ID          string `yaml:"id" validate:"required"`
	Title       string `yaml:"title"`
	Album       string `yaml:"album"`
	Released    string `yaml:"released" validate:"omitempty,datetime=2006-01-02"`
	URL         string `yaml:"url" validate:"required,url"`
	DurationSec int    `yaml:"duration_sec" validate:"gte=1"`
}

// Duration returns the entry duration.
func (m ManifestItem) Duration() time.Duration {
	return time.Duration(m.DurationSec) * time.Second
}

// ReleasedTime parses the release date, zero when unset.
func (m ManifestItem) ReleasedTime() time.Time {
	if m.Released == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", m.Released)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("PLAYLINE_RESUME_PATH"); v != "" {
		c.Resume.Path = v
	}
	if v := os.Getenv("PLAYLINE_POLICY"); v != "" {
		c.Policy.Type = v
	}
}

// ResolveTimeout returns the resolve timeout as a duration.
func (c *Config) ResolveTimeout() time.Duration {
	return time.Duration(c.Engine.ResolveTimeoutSec) * time.Second
}

// Tick returns the sink tick interval.
func (c *Config) Tick() time.Duration {
	return time.Duration(c.Sink.TickMs) * time.Millisecond
}

// ReportTimeout returns the reporter delivery timeout.
func (c *Config) ReportTimeout() time.Duration {
	return time.Duration(c.Report.TimeoutSec) * time.Second
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	if c.Report.Enabled && c.Report.Endpoint == "" {
		return errors.New("report.endpoint is required when reporting is enabled")
	}

	seen := make(map[string]bool, len(c.Manifest))
	for _, m := range c.Manifest {
		if seen[m.ID] {
			return errors.Newf("duplicate manifest id: %s", m.ID)
		}
		seen[m.ID] = true
	}

	return nil
}
