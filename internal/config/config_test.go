package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parishworks/sexton/internal/config"
)

// setRequiredDatabaseEnv supplies the two database fields without defaults.
func setRequiredDatabaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SEXTON_DB_NAME", "sexton")
	t.Setenv("SEXTON_DB_USER", "sexton")
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	setRequiredDatabaseEnv(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("server addr = %s, want 0.0.0.0:8080", cfg.Server.Addr())
	}
	if cfg.Agent.BaseURL != "http://localhost:3005/api" {
		t.Errorf("agent base url = %s, want default", cfg.Agent.BaseURL)
	}
	if cfg.Workflow.PollIntervalDuration() != time.Second {
		t.Errorf("poll interval = %v, want 1s", cfg.Workflow.PollIntervalDuration())
	}
	if cfg.Workflow.PollTimeoutDuration() != 300*time.Second {
		t.Errorf("poll timeout = %v, want 300s", cfg.Workflow.PollTimeoutDuration())
	}
	if cfg.Queue.Workers != 4 {
		t.Errorf("queue workers = %d, want 4", cfg.Queue.Workers)
	}
	if cfg.API.BasePath != "/api" {
		t.Errorf("api base path = %s, want /api", cfg.API.BasePath)
	}
	if cfg.ShutdownTimeoutDuration() != 30*time.Second {
		t.Errorf("shutdown timeout = %v, want 30s", cfg.ShutdownTimeoutDuration())
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	setRequiredDatabaseEnv(t)

	t.Setenv("SEXTON_SERVER_PORT", "9090")
	t.Setenv("SEXTON_AGENT_BASE_URL", "https://agent.internal:3005/api")
	t.Setenv("SEXTON_AGENT_TOKEN", "secret-token")
	t.Setenv("SEXTON_WORKFLOW_POLL_INTERVAL", "2s")
	t.Setenv("SEXTON_QUEUE_WORKERS", "8")
	t.Setenv("SEXTON_DB_NAME", "sexton_test")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090 from env", cfg.Server.Port)
	}
	if cfg.Agent.BaseURL != "https://agent.internal:3005/api" {
		t.Errorf("agent base url = %s, want env value", cfg.Agent.BaseURL)
	}
	if cfg.Agent.Token != "secret-token" {
		t.Errorf("agent token = %s, want env value", cfg.Agent.Token)
	}
	if cfg.Workflow.PollIntervalDuration() != 2*time.Second {
		t.Errorf("poll interval = %v, want 2s from env", cfg.Workflow.PollIntervalDuration())
	}
	if cfg.Queue.Workers != 8 {
		t.Errorf("queue workers = %d, want 8 from env", cfg.Queue.Workers)
	}
	if cfg.Database.Name != "sexton_test" {
		t.Errorf("db name = %s, want env value", cfg.Database.Name)
	}
}

func TestLoadBaseAndOverlay(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("SEXTON_ENV", "staging")

	base := `
version = "1.2.3"

[database]
name = "sexton"
user = "sexton"

[server]
port = 8081

[agent]
base_url = "http://agent.local:3005/api"
token = "base-token"
`
	overlay := `
[server]
port = 8082

[workflow]
poll_interval = "5s"
poll_timeout = "600s"
`

	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(base), 0o644); err != nil {
		t.Fatalf("write base config failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.staging.toml"), []byte(overlay), 0o644); err != nil {
		t.Fatalf("write overlay config failed: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Version != "1.2.3" {
		t.Errorf("version = %s, want base value", cfg.Version)
	}
	if cfg.Server.Port != 8082 {
		t.Errorf("port = %d, want overlay value 8082", cfg.Server.Port)
	}
	if cfg.Agent.Token != "base-token" {
		t.Errorf("agent token = %s, want base value to survive overlay", cfg.Agent.Token)
	}
	if cfg.Workflow.PollInterval != "5s" {
		t.Errorf("poll interval = %s, want overlay value", cfg.Workflow.PollInterval)
	}
}

func TestWorkflowConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.WorkflowConfig
	}{
		{"malformed interval", config.WorkflowConfig{PollInterval: "soon"}},
		{"zero interval", config.WorkflowConfig{PollInterval: "0s"}},
		{"timeout below interval", config.WorkflowConfig{PollInterval: "10s", PollTimeout: "5s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Finalize(); err == nil {
				t.Error("Finalize() should reject invalid polling config")
			}
		})
	}
}

func TestQueueConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.QueueConfig
	}{
		{"negative workers", config.QueueConfig{Workers: -1}},
		{"malformed lease", config.QueueConfig{Lease: "forever"}},
		{"zero backoff", config.QueueConfig{BackoffBase: "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Finalize(); err == nil {
				t.Error("Finalize() should reject invalid queue config")
			}
		})
	}
}

func TestQueueConfigRunnerConfig(t *testing.T) {
	cfg := config.QueueConfig{}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}

	rc := cfg.RunnerConfig()
	if rc.Workers != 4 {
		t.Errorf("workers = %d, want 4", rc.Workers)
	}
	if rc.PollInterval != 500*time.Millisecond {
		t.Errorf("poll interval = %v, want 500ms", rc.PollInterval)
	}
	if rc.Lease != time.Minute {
		t.Errorf("lease = %v, want 1m", rc.Lease)
	}
	if rc.BackoffBase != time.Second || rc.BackoffCap != time.Minute {
		t.Errorf("backoff = %v/%v, want 1s/1m", rc.BackoffBase, rc.BackoffCap)
	}
}

func TestAgentConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.AgentConfig
	}{
		{"missing scheme", config.AgentConfig{BaseURL: "agent.local/api"}},
		{"malformed timeout", config.AgentConfig{RequestTimeout: "fast"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Finalize(); err == nil {
				t.Error("Finalize() should reject invalid agent config")
			}
		})
	}
}

func TestServerConfigValidation(t *testing.T) {
	cfg := config.ServerConfig{Port: 70000}
	if err := cfg.Finalize(); err == nil {
		t.Error("Finalize() should reject out-of-range port")
	}
}
