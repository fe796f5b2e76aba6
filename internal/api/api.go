// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/parishworks/sexton/internal/config"
	"github.com/parishworks/sexton/internal/infrastructure"
	"github.com/parishworks/sexton/pkg/middleware"
	"github.com/parishworks/sexton/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// The returned Domain exposes the queue runner for the server to start.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, *Domain, error) {
	runtime := NewRuntime(cfg, infra)

	domain, err := NewDomain(runtime)
	if err != nil {
		return nil, nil, err
	}

	mux := http.NewServeMux()
	registerRoutes(mux, domain, runtime)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	return m, domain, nil
}
