package config

import (
	"time"

	redisclient "github.com/minhvo/spsweep/internal/infra/redis"
	"github.com/minhvo/spsweep/internal/infra/sharepoint"
	"github.com/minhvo/spsweep/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Sites      SitesConfig        `yaml:"sites"`
	SharePoint sharepoint.Config  `yaml:"sharepoint"`
	Retry      RetryConfig        `yaml:"retry"`
	Pacing     PacingConfig       `yaml:"pacing"`
	Labels     LabelsConfig       `yaml:"labels"`
	Server     ServerConfig       `yaml:"server"`
	Logging    LoggingConfig      `yaml:"logging"`
	Redis      redisclient.Config `yaml:"redis"`
	Database   postgres.Config    `yaml:"database"`

	// FailOnErrors makes the process exit non-zero when any site or list
	// was skipped. Off by default: a degraded run still completes.
	FailOnErrors bool `yaml:"fail_on_errors"`
}

// SitesConfig locates the site list and the list-title ignore set.
type SitesConfig struct {
	File        string   `yaml:"file"`
	IgnoreLists []string `yaml:"ignore_lists"`
}

// RetryConfig controls the throttling-aware retry policy.
type RetryConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
	BaseDelayMs int `yaml:"base_delay_ms"`
}

// BaseDelay returns the configured base backoff delay.
func (c RetryConfig) BaseDelay() time.Duration {
	return time.Duration(c.BaseDelayMs) * time.Millisecond
}

// PacingConfig holds the proactive inter-operation delays. A zero value
// disables pacing at that granularity.
type PacingConfig struct {
	ItemDelayMs int `yaml:"item_delay_ms"`
	ListDelayMs int `yaml:"list_delay_ms"`
	SiteDelayMs int `yaml:"site_delay_ms"`
}

func (c PacingConfig) ItemDelay() time.Duration {
	return time.Duration(c.ItemDelayMs) * time.Millisecond
}

func (c PacingConfig) ListDelay() time.Duration {
	return time.Duration(c.ListDelayMs) * time.Millisecond
}

func (c PacingConfig) SiteDelay() time.Duration {
	return time.Duration(c.SiteDelayMs) * time.Millisecond
}

// LabelsConfig controls the label sweep.
type LabelsConfig struct {
	// Target filters qualification to labels whose name starts with this
	// value. Empty matches any present label.
	Target string `yaml:"target"`
}

// ServerConfig holds the metrics/health endpoint settings. Port 0
// disables the server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}
