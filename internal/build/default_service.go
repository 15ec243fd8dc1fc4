package build

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/clientgen/internal/artifact"
	"git.home.luguber.info/inful/clientgen/internal/config"
	"git.home.luguber.info/inful/clientgen/internal/foundation/errors"
	"git.home.luguber.info/inful/clientgen/internal/generator"
	"git.home.luguber.info/inful/clientgen/internal/gitpublish"
	"git.home.luguber.info/inful/clientgen/internal/logfields"
	"git.home.luguber.info/inful/clientgen/internal/metrics"
	"git.home.luguber.info/inful/clientgen/internal/pipeline"
	"git.home.luguber.info/inful/clientgen/internal/process"
)

// RunRecorder persists finished runs.
type RunRecorder interface {
	Record(ctx context.Context, run *pipeline.Run) error
}

// DefaultService is the standard Service implementation.
type DefaultService struct {
	executorFactory func(cfg *config.Config) process.Executor
	artifactFactory func(cfg *config.Config) generator.ArtifactSource
	recorder        metrics.Recorder
	history         RunRecorder
	observer        pipeline.Observer
}

// NewService creates a DefaultService backed by real processes and the artifact cache.
func NewService() *DefaultService {
	return &DefaultService{
		executorFactory: func(cfg *config.Config) process.Executor {
			return process.NewRunner(process.WithTimeout(cfg.Process.Timeout))
		},
		artifactFactory: func(cfg *config.Config) generator.ArtifactSource {
			return artifact.NewCache(cfg.Codegen.CacheDir, cfg.Codegen.URLTemplate)
		},
		recorder: metrics.NoopRecorder{},
	}
}

// WithExecutorFactory replaces how the command executor is created (for testing).
func (s *DefaultService) WithExecutorFactory(f func(cfg *config.Config) process.Executor) *DefaultService {
	s.executorFactory = f
	return s
}

// WithArtifactFactory replaces how the generator jar is obtained (for testing).
func (s *DefaultService) WithArtifactFactory(f func(cfg *config.Config) generator.ArtifactSource) *DefaultService {
	s.artifactFactory = f
	return s
}

// WithRecorder sets the metrics recorder.
func (s *DefaultService) WithRecorder(r metrics.Recorder) *DefaultService {
	if r != nil {
		s.recorder = r
	}
	return s
}

// WithHistory persists every finished run to h.
func (s *DefaultService) WithHistory(h RunRecorder) *DefaultService {
	s.history = h
	return s
}

// WithObserver adds a pipeline observer next to the metrics observer.
func (s *DefaultService) WithObserver(o pipeline.Observer) *DefaultService {
	s.observer = o
	return s
}

// Run builds the target from req.Config and executes its pipeline.
func (s *DefaultService) Run(ctx context.Context, req Request) (*Result, error) {
	result := &Result{StartTime: time.Now()}
	finish := func(status Status) {
		result.Status = status
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(result.StartTime)
	}

	if req.Config == nil {
		finish(StatusFailed)
		return result, errors.ConfigError("config required").Build()
	}
	target, err := req.Config.Target(req.Target)
	if err != nil {
		finish(StatusFailed)
		return result, err
	}
	result.OutputPath = target.OutputDir

	exec := s.executorFactory(req.Config)
	observers := pipeline.Observers{metrics.NewObserver(s.recorder)}
	if s.observer != nil {
		observers = append(observers, s.observer)
	}
	opts := []generator.Option{
		generator.WithObserver(observers),
		generator.WithJava(req.Config.Codegen.Java),
		generator.WithNPM(req.Config.Process.NPM),
	}
	if req.Options.GitPush || req.Options.GitOnly {
		opts = append(opts, generator.WithGitPublisher(gitpublish.NewPublisher(exec, gitpublish.WithGit(req.Config.Process.Git))))
	}

	gen, err := generator.New(target, exec, s.artifactFactory(req.Config), opts...)
	if err != nil {
		finish(StatusFailed)
		return result, err
	}

	steps := gen.Steps(req.Options.Publish)
	if req.Options.GitOnly {
		steps = gen.GitOnlySteps()
	}
	run, runErr := gen.RunSteps(ctx, steps)
	result.Run = run
	result.Changed = gen.Tree().Changed()

	switch {
	case runErr == nil && run.Warnings() > 0:
		finish(StatusWarning)
	case runErr == nil:
		finish(StatusSuccess)
	case stderrors.Is(runErr, context.Canceled):
		finish(StatusCanceled)
	default:
		finish(StatusFailed)
	}

	if s.history != nil {
		// recording must survive a canceled run context
		if err := s.history.Record(context.WithoutCancel(ctx), run); err != nil {
			slog.Warn("Failed to record run history", logfields.RunID(run.ID), logfields.Error(err))
		}
	}
	return result, runErr
}
