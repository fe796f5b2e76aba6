package workflow

import (
	"log/slog"
	"time"

	"github.com/parishworks/sexton/internal/agent"
	"github.com/parishworks/sexton/internal/conversions"
)

const (
	// DefaultPollInterval is the delay between wait-step polls of the agent.
	DefaultPollInterval = time.Second
	// DefaultPollTimeout is the wall-clock budget for an agent task to
	// settle, measured from the conversion record's creation.
	DefaultPollTimeout = 300 * time.Second
)

// Runtime bundles the collaborators the workflow steps execute against.
// Now is the time source for the polling deadline; tests override it.
type Runtime struct {
	Agent  agent.Client
	Pages  conversions.System
	Posts  conversions.System
	Logger *slog.Logger

	PollInterval time.Duration
	PollTimeout  time.Duration
	Now          func() time.Time
}

func (rt *Runtime) system(kind conversions.Kind) conversions.System {
	if kind == conversions.KindPost {
		return rt.Posts
	}
	return rt.Pages
}

func (rt *Runtime) pollInterval() time.Duration {
	if rt.PollInterval > 0 {
		return rt.PollInterval
	}
	return DefaultPollInterval
}

func (rt *Runtime) pollTimeout() time.Duration {
	if rt.PollTimeout > 0 {
		return rt.PollTimeout
	}
	return DefaultPollTimeout
}

func (rt *Runtime) now() time.Time {
	if rt.Now != nil {
		return rt.Now()
	}
	return time.Now()
}

func (rt *Runtime) logger() *slog.Logger {
	if rt.Logger != nil {
		return rt.Logger
	}
	return slog.Default()
}
