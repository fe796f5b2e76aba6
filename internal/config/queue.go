package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/parishworks/sexton/internal/queue"
)

const (
	EnvQueueWorkers      = "SEXTON_QUEUE_WORKERS"
	EnvQueuePollInterval = "SEXTON_QUEUE_POLL_INTERVAL"
	EnvQueueLease        = "SEXTON_QUEUE_LEASE"
	EnvQueueBackoffBase  = "SEXTON_QUEUE_BACKOFF_BASE"
	EnvQueueBackoffCap   = "SEXTON_QUEUE_BACKOFF_CAP"
)

// QueueConfig tunes the job queue worker pool.
type QueueConfig struct {
	Workers      int    `toml:"workers"`
	PollInterval string `toml:"poll_interval"`
	Lease        string `toml:"lease"`
	BackoffBase  string `toml:"backoff_base"`
	BackoffCap   string `toml:"backoff_cap"`
}

// RunnerConfig converts the settings into the queue runner's configuration.
func (c *QueueConfig) RunnerConfig() queue.RunnerConfig {
	return queue.RunnerConfig{
		Workers:      c.Workers,
		PollInterval: c.duration(c.PollInterval),
		Lease:        c.duration(c.Lease),
		BackoffBase:  c.duration(c.BackoffBase),
		BackoffCap:   c.duration(c.BackoffCap),
	}
}

func (c *QueueConfig) duration(v string) time.Duration {
	d, _ := time.ParseDuration(v)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *QueueConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *QueueConfig) Merge(overlay *QueueConfig) {
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
	if overlay.PollInterval != "" {
		c.PollInterval = overlay.PollInterval
	}
	if overlay.Lease != "" {
		c.Lease = overlay.Lease
	}
	if overlay.BackoffBase != "" {
		c.BackoffBase = overlay.BackoffBase
	}
	if overlay.BackoffCap != "" {
		c.BackoffCap = overlay.BackoffCap
	}
}

func (c *QueueConfig) loadDefaults() {
	if c.Workers == 0 {
		c.Workers = 4
	}
	if c.PollInterval == "" {
		c.PollInterval = "500ms"
	}
	if c.Lease == "" {
		c.Lease = "1m"
	}
	if c.BackoffBase == "" {
		c.BackoffBase = "1s"
	}
	if c.BackoffCap == "" {
		c.BackoffCap = "1m"
	}
}

func (c *QueueConfig) loadEnv() {
	if v := os.Getenv(EnvQueueWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
	if v := os.Getenv(EnvQueuePollInterval); v != "" {
		c.PollInterval = v
	}
	if v := os.Getenv(EnvQueueLease); v != "" {
		c.Lease = v
	}
	if v := os.Getenv(EnvQueueBackoffBase); v != "" {
		c.BackoffBase = v
	}
	if v := os.Getenv(EnvQueueBackoffCap); v != "" {
		c.BackoffCap = v
	}
}

func (c *QueueConfig) validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive")
	}
	for name, v := range map[string]string{
		"poll_interval": c.PollInterval,
		"lease":         c.Lease,
		"backoff_base":  c.BackoffBase,
		"backoff_cap":   c.BackoffCap,
	} {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}
