package commands

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/clientgen/internal/build"
	"git.home.luguber.info/inful/clientgen/internal/config"
	"git.home.luguber.info/inful/clientgen/internal/history"
	"git.home.luguber.info/inful/clientgen/internal/logfields"
	"git.home.luguber.info/inful/clientgen/internal/metrics"
)

// Global holds state shared by subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"clientgen.yaml" env:"CLIENTGEN_CONFIG"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Generate GenerateCmd `cmd:"" help:"Generate, patch and build the client for a target"`
	Publish  PublishCmd  `cmd:"" help:"Push an already generated target to its git remote"`
	Init     InitCmd     `cmd:"" help:"Initialize a new configuration file"`
	History  HistoryCmd  `cmd:"" help:"List recorded pipeline runs"`
	Daemon   DaemonCmd   `cmd:"" help:"Regenerate a target on a schedule"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if c.Verbose || strings.EqualFold(os.Getenv("CLIENTGEN_LOG_LEVEL"), "debug") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	g.Logger = logger
	return nil
}

// runtime bundles the service and the optional sinks opened for one command.
type runtime struct {
	svc      *build.DefaultService
	recorder *metrics.PrometheusRecorder
	history  *history.Store
	textfile string
}

// newRuntime wires the build service with history and metrics as configured.
func newRuntime(cfg *config.Config) (*runtime, error) {
	rt := &runtime{svc: build.NewService(), textfile: cfg.Metrics.Textfile}
	if rt.textfile != "" {
		rt.recorder = metrics.NewPrometheusRecorder(nil)
		rt.svc.WithRecorder(rt.recorder)
	}
	if cfg.History.Path != "" {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, err
		}
		rt.history = store
		rt.svc.WithHistory(store)
	}
	return rt, nil
}

// flush exports metrics to the textfile, if enabled.
func (rt *runtime) flush() {
	if rt.recorder == nil {
		return
	}
	if err := rt.recorder.WriteTextfile(rt.textfile); err != nil {
		slog.Warn("Failed to write metrics textfile", logfields.Path(rt.textfile), logfields.Error(err))
	}
}

func (rt *runtime) close() {
	rt.flush()
	if rt.history != nil {
		if err := rt.history.Close(); err != nil {
			slog.Warn("Failed to close history store", logfields.Error(err))
		}
	}
}

// runTarget loads config and executes one run through the build service.
func runTarget(ctx context.Context, root *CLI, target string, opts build.Options) (*build.Result, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	rt, err := newRuntime(cfg)
	if err != nil {
		return nil, err
	}
	defer rt.close()

	return rt.svc.Run(ctx, build.Request{Config: cfg, Target: target, Options: opts})
}
