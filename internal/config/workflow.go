package config

import (
	"fmt"
	"os"
	"time"
)

const (
	EnvWorkflowPollInterval = "SEXTON_WORKFLOW_POLL_INTERVAL"
	EnvWorkflowPollTimeout  = "SEXTON_WORKFLOW_POLL_TIMEOUT"
)

// WorkflowConfig tunes the wait step's agent polling. Both conversion kinds
// share the same settings.
type WorkflowConfig struct {
	PollInterval string `toml:"poll_interval"`
	PollTimeout  string `toml:"poll_timeout"`
}

// PollIntervalDuration returns PollInterval as a time.Duration.
func (c *WorkflowConfig) PollIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.PollInterval)
	return d
}

// PollTimeoutDuration returns PollTimeout as a time.Duration.
func (c *WorkflowConfig) PollTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.PollTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *WorkflowConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *WorkflowConfig) Merge(overlay *WorkflowConfig) {
	if overlay.PollInterval != "" {
		c.PollInterval = overlay.PollInterval
	}
	if overlay.PollTimeout != "" {
		c.PollTimeout = overlay.PollTimeout
	}
}

func (c *WorkflowConfig) loadDefaults() {
	if c.PollInterval == "" {
		c.PollInterval = "1s"
	}
	if c.PollTimeout == "" {
		c.PollTimeout = "300s"
	}
}

func (c *WorkflowConfig) loadEnv() {
	if v := os.Getenv(EnvWorkflowPollInterval); v != "" {
		c.PollInterval = v
	}
	if v := os.Getenv(EnvWorkflowPollTimeout); v != "" {
		c.PollTimeout = v
	}
}

func (c *WorkflowConfig) validate() error {
	interval, err := time.ParseDuration(c.PollInterval)
	if err != nil {
		return fmt.Errorf("invalid poll_interval: %w", err)
	}
	timeout, err := time.ParseDuration(c.PollTimeout)
	if err != nil {
		return fmt.Errorf("invalid poll_timeout: %w", err)
	}
	if interval <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}
	if timeout <= interval {
		return fmt.Errorf("poll_timeout must exceed poll_interval")
	}
	return nil
}
