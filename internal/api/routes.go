package api

import (
	"net/http"

	"github.com/parishworks/sexton/internal/conversions"
	"github.com/parishworks/sexton/internal/workflow"
	"github.com/parishworks/sexton/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain, runtime *Runtime) {
	workflowHandler := workflow.NewHandler(domain.Queue, runtime.Logger)

	pagesHandler := conversions.NewHandler(
		domain.Pages,
		runtime.Logger,
		runtime.Pagination,
	)

	postsHandler := conversions.NewHandler(
		domain.Posts,
		runtime.Logger,
		runtime.Pagination,
	)

	routes.Register(
		mux,
		workflowHandler.Routes(),
		pagesHandler.Routes(),
		postsHandler.Routes(),
	)
}
