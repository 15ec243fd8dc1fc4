package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/clientgen/internal/build"
)

// GenerateCmd implements the 'generate' command.
type GenerateCmd struct {
	Target  string `arg:"" help:"Target name from the configuration"`
	Publish bool   `help:"Publish the package to the npm registry after building"`
	Git     bool   `help:"Push the generated tree to its git remote after building"`
}

func (g *GenerateCmd) Run(_ *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	res, err := runTarget(ctx, root, g.Target, build.Options{Publish: g.Publish, GitPush: g.Git})
	if res != nil {
		printResult(res)
	}
	return err
}

func printResult(res *build.Result) {
	if res.Run == nil {
		return
	}
	fmt.Printf("%s %s in %s (run %s)\n", res.Run.Target, res.Status, res.Duration.Round(time.Millisecond), res.Run.ID)
	for _, s := range res.Run.Steps {
		line := fmt.Sprintf("  %-26s %-8s %s", s.Name, s.Result, s.Duration.Round(time.Millisecond))
		if s.Error != "" {
			line += "  " + s.Error
		}
		fmt.Println(line)
	}
	if len(res.Changed) > 0 {
		fmt.Printf("  patched: %v\n", res.Changed)
	}
}
