package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/clientgen/internal/build"
	"git.home.luguber.info/inful/clientgen/internal/config"
	"git.home.luguber.info/inful/clientgen/internal/foundation/errors"
	"git.home.luguber.info/inful/clientgen/internal/logfields"
)

// Daemon regenerates one target periodically.
type Daemon struct {
	configPath string
	target     string
	svc        build.Service
	afterRun   func(*build.Result)

	mu       sync.RWMutex
	cfg      *config.Config
	snapshot string

	sched   *Scheduler
	jobID   uuid.UUID
	watcher *ConfigWatcher
	runCtx  context.Context
}

// Option configures a Daemon.
type Option func(*Daemon)

// WithAfterRun registers a callback invoked after every run, successful or not.
func WithAfterRun(fn func(*build.Result)) Option {
	return func(d *Daemon) { d.afterRun = fn }
}

// New creates a daemon for target. configPath enables config watching when the
// loaded configuration asks for it.
func New(configPath string, cfg *config.Config, target string, svc build.Service, opts ...Option) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.ConfigError("config required").Build()
	}
	if _, err := cfg.Target(target); err != nil {
		return nil, err
	}
	d := &Daemon{
		configPath: configPath,
		target:     target,
		svc:        svc,
		cfg:        cfg,
		snapshot:   cfg.Snapshot(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Config returns the configuration the next run will use.
func (d *Daemon) Config() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// Run starts the schedule, performs an initial run and blocks until ctx is done.
func (d *Daemon) Run(ctx context.Context) error {
	sched, err := NewScheduler()
	if err != nil {
		return errors.WrapError(err, errors.CategoryDaemon, "failed to create scheduler").Fatal().Build()
	}
	d.sched = sched
	d.runCtx = ctx

	cfg := d.Config()
	id, err := sched.ScheduleEvery(d.jobName(), cfg.Daemon.Interval, d.runOnce)
	if err != nil {
		return errors.WrapError(err, errors.CategoryDaemon, "failed to schedule generation").Fatal().Build()
	}
	d.jobID = id
	sched.Start(ctx)
	defer func() {
		if err := sched.Stop(context.Background()); err != nil {
			slog.Warn("Scheduler shutdown failed", logfields.Error(err))
		}
	}()

	if cfg.Daemon.WatchConfig && d.configPath != "" {
		w, err := NewConfigWatcher(d.configPath, d.Reload)
		if err != nil {
			return errors.WrapError(err, errors.CategoryDaemon, "failed to create config watcher").Fatal().Build()
		}
		if err := w.Start(ctx); err != nil {
			return errors.WrapError(err, errors.CategoryDaemon, "failed to start config watcher").Fatal().Build()
		}
		d.watcher = w
		defer func() { _ = w.Stop(context.Background()) }()
	}

	if err := sched.RunNow(id); err != nil {
		slog.Warn("Initial run could not be triggered", logfields.Error(err))
	}

	slog.Info("Daemon running", logfields.Target(d.target), slog.Duration("interval", cfg.Daemon.Interval))
	<-ctx.Done()
	slog.Info("Daemon stopping", logfields.Target(d.target))
	return nil
}

// Reload swaps in cfg. Changes that affect the generated tree trigger an immediate
// run; interval changes reschedule the job.
func (d *Daemon) Reload(_ context.Context, cfg *config.Config) error {
	if _, err := cfg.Target(d.target); err != nil {
		return err
	}

	d.mu.Lock()
	prev := d.cfg
	snap := cfg.Snapshot()
	changed := snap != d.snapshot
	d.cfg = cfg
	d.snapshot = snap
	d.mu.Unlock()

	if d.sched == nil {
		return nil
	}
	if cfg.Daemon.Interval != prev.Daemon.Interval {
		if err := d.sched.Reschedule(d.jobID, d.jobName(), cfg.Daemon.Interval, d.runOnce); err != nil {
			return err
		}
	}
	if !changed {
		slog.Info("Configuration reloaded; generation inputs unchanged", logfields.Target(d.target))
		return nil
	}
	slog.Info("Configuration changed; regenerating", logfields.Target(d.target))
	return d.sched.RunNow(d.jobID)
}

func (d *Daemon) jobName() string { return "generate-" + d.target }

// runOnce is the scheduled task. The scheduler's singleton mode keeps it from
// overlapping itself.
func (d *Daemon) runOnce() {
	ctx := d.runCtx
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Err() != nil {
		return
	}

	cfg := d.Config()
	start := time.Now()
	res, err := d.svc.Run(ctx, build.Request{
		Config: cfg,
		Target: d.target,
		Options: build.Options{
			Publish: cfg.Daemon.Publish,
			GitPush: cfg.Daemon.GitPush,
		},
	})
	if err != nil {
		slog.Error("Scheduled generation failed", logfields.Target(d.target), logfields.Duration(time.Since(start)), logfields.Error(err))
	} else {
		slog.Info("Scheduled generation finished", logfields.Target(d.target), logfields.Duration(time.Since(start)), slog.String("status", string(res.Status)))
	}
	if d.afterRun != nil && res != nil {
		d.afterRun(res)
	}
}
