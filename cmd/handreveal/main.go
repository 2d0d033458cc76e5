package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Resolve  ResolveCmd       `cmd:"" help:"Resolve anonymized hand history files against extraction evidence"`
	Validate ValidateCmd      `cmd:"" help:"Check a resolved file against its anonymized original"`
	Watch    WatchCmd         `cmd:"" help:"Watch a directory and resolve hand history exports as they settle"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("handreveal"),
		kong.Description("Rewrites anonymized poker hand histories with real player names"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
