package api

import (
	"github.com/parishworks/sexton/internal/config"
	"github.com/parishworks/sexton/internal/infrastructure"
	"github.com/parishworks/sexton/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Workflow   config.WorkflowConfig
	Queue      config.QueueConfig
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Agent:     infra.Agent,
		},
		Pagination: cfg.API.Pagination,
		Workflow:   cfg.Workflow,
		Queue:      cfg.Queue,
	}
}
