package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/clientgen/internal/build"
	"git.home.luguber.info/inful/clientgen/internal/config"
	"git.home.luguber.info/inful/clientgen/internal/daemon"
)

// DaemonCmd implements the 'daemon' command.
type DaemonCmd struct {
	Target string `arg:"" help:"Target name from the configuration"`
}

func (d *DaemonCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	rt, err := newRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dm, err := daemon.New(root.Config, cfg, d.Target, rt.svc, daemon.WithAfterRun(func(*build.Result) { rt.flush() }))
	if err != nil {
		return err
	}
	slog.Info("Starting daemon mode", "target", d.Target, "interval", cfg.Daemon.Interval)
	return dm.Run(ctx)
}
