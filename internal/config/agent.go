package config

import (
	"fmt"
	"net/url"
	"os"
	"time"
)

const (
	EnvAgentBaseURL        = "SEXTON_AGENT_BASE_URL"
	EnvAgentToken          = "SEXTON_AGENT_TOKEN"
	EnvAgentRequestTimeout = "SEXTON_AGENT_REQUEST_TIMEOUT"
)

// AgentConfig holds connection parameters for the external conversion agent.
type AgentConfig struct {
	BaseURL        string `toml:"base_url"`
	Token          string `toml:"token"`
	RequestTimeout string `toml:"request_timeout"`
}

// RequestTimeoutDuration returns RequestTimeout as a time.Duration.
func (c *AgentConfig) RequestTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.RequestTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *AgentConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *AgentConfig) Merge(overlay *AgentConfig) {
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Token != "" {
		c.Token = overlay.Token
	}
	if overlay.RequestTimeout != "" {
		c.RequestTimeout = overlay.RequestTimeout
	}
}

func (c *AgentConfig) loadDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:3005/api"
	}
	if c.RequestTimeout == "" {
		c.RequestTimeout = "30s"
	}
}

func (c *AgentConfig) loadEnv() {
	if v := os.Getenv(EnvAgentBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvAgentToken); v != "" {
		c.Token = v
	}
	if v := os.Getenv(EnvAgentRequestTimeout); v != "" {
		c.RequestTimeout = v
	}
}

func (c *AgentConfig) validate() error {
	parsed, err := url.Parse(c.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid base_url: %s", c.BaseURL)
	}
	if _, err := time.ParseDuration(c.RequestTimeout); err != nil {
		return fmt.Errorf("invalid request_timeout: %w", err)
	}
	return nil
}
