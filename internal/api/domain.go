package api

import (
	"github.com/parishworks/sexton/internal/conversions"
	"github.com/parishworks/sexton/internal/queue"
	"github.com/parishworks/sexton/internal/workflow"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Pages    conversions.System
	Posts    conversions.System
	Queue    queue.Store
	Registry *queue.Registry
	Runner   *queue.Runner
}

// NewDomain creates all domain systems from the API runtime and registers
// the conversion workflows with the queue.
func NewDomain(runtime *Runtime) (*Domain, error) {
	pages := conversions.New(
		runtime.Database.Connection(),
		conversions.KindPage,
		runtime.Logger,
		runtime.Pagination,
	)

	posts := conversions.New(
		runtime.Database.Connection(),
		conversions.KindPost,
		runtime.Logger,
		runtime.Pagination,
	)

	store := queue.NewStore(runtime.Database.Connection())
	registry := queue.NewRegistry()

	rt := &workflow.Runtime{
		Agent:        runtime.Agent,
		Pages:        pages,
		Posts:        posts,
		Logger:       runtime.Logger,
		PollInterval: runtime.Workflow.PollIntervalDuration(),
		PollTimeout:  runtime.Workflow.PollTimeoutDuration(),
	}

	if err := workflow.Register(registry, rt); err != nil {
		return nil, err
	}

	runner := queue.NewRunner(
		store,
		registry,
		runtime.Logger,
		runtime.Queue.RunnerConfig(),
	)

	return &Domain{
		Pages:    pages,
		Posts:    posts,
		Queue:    store,
		Registry: registry,
		Runner:   runner,
	}, nil
}
