package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"git.home.luguber.info/inful/clientgen/internal/config"
	"git.home.luguber.info/inful/clientgen/internal/foundation/errors"
	"git.home.luguber.info/inful/clientgen/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int `short:"n" help:"Number of runs to show (0 for all)" default:"20"`
}

func (h *HistoryCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	if cfg.History.Path == "" {
		return errors.ConfigError("run history is disabled").
			WithContext("hint", "set history.path in the configuration").
			Build()
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	entries, err := store.List(context.Background(), h.Limit)
	if err != nil {
		return err
	}
	return writeHistory(os.Stdout, entries)
}

func writeHistory(w io.Writer, entries []history.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tTARGET\tSTATE\tDURATION\tWARNINGS\tRUN\tERROR")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			e.Start.Local().Format("2006-01-02 15:04:05"), e.Target, e.State, e.Duration, e.Warnings, e.ID, e.Error)
	}
	return tw.Flush()
}
