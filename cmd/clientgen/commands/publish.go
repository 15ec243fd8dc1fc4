package commands

import (
	"context"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/clientgen/internal/build"
)

// PublishCmd implements the 'publish' command.
type PublishCmd struct {
	Target string `arg:"" help:"Target name from the configuration"`
}

func (p *PublishCmd) Run(_ *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	res, err := runTarget(ctx, root, p.Target, build.Options{GitOnly: true})
	if res != nil {
		printResult(res)
	}
	return err
}
