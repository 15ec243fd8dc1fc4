package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/clientgen/cmd/clientgen/commands"
	"git.home.luguber.info/inful/clientgen/internal/foundation/errors"
	"git.home.luguber.info/inful/clientgen/internal/version"
)

func main() {
	cli := &commands.CLI{}
	global := &commands.Global{}
	ctx := kong.Parse(cli,
		kong.Name("clientgen"),
		kong.Description("Generate, patch, build and publish API client packages from an OpenAPI document."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
	)

	if err := ctx.Run(global, cli); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
