// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, agent client) that domain
// systems require.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/parishworks/sexton/internal/agent"
	"github.com/parishworks/sexton/internal/config"
	"github.com/parishworks/sexton/pkg/database"
	"github.com/parishworks/sexton/pkg/lifecycle"
)

// Infrastructure holds the core systems required by all domain modules.
// It provides a single point of initialization for lifecycle coordination,
// logging, database access, and the agent client.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Agent     agent.Client
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	client, err := agent.NewClient(
		cfg.Agent.BaseURL,
		cfg.Agent.Token,
		cfg.Agent.RequestTimeoutDuration(),
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("agent init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Agent:     client,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	return nil
}
