package main

import (
	"os"

	"github.com/flowspec-dev/flowspec/internal/cli"
	_ "github.com/flowspec-dev/flowspec/internal/cli/commands" // register subcommands via init()
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	cli.SetVersion(Version)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
