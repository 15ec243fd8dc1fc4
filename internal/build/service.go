package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/clientgen/internal/config"
	"git.home.luguber.info/inful/clientgen/internal/pipeline"
)

// Service executes generation runs.
type Service interface {
	Run(ctx context.Context, req Request) (*Result, error)
}

// Request contains all inputs for one run.
type Request struct {
	Config  *config.Config
	Target  string
	Options Options
}

// Options modify which steps a run includes.
type Options struct {
	// Publish adds the npm publish step.
	Publish bool
	// GitPush pushes the tree to its remote after a successful build.
	GitPush bool
	// GitOnly skips generation and only pushes the existing tree.
	GitOnly bool
}

// Result is the outcome of a run.
type Result struct {
	Status     Status
	Run        *pipeline.Run
	OutputPath string
	Changed    []string
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}

// Status represents the outcome of a run.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusWarning  Status = "warning"
	StatusFailed   Status = "failed"
	StatusCanceled Status = "canceled"
)

// IsSuccess returns true if the run reached the done state.
func (s Status) IsSuccess() bool { return s == StatusSuccess || s == StatusWarning }
