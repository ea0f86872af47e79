// Package main is the entry point for the stevedore CLI.
//
// This binary generates containers from declarative configuration
// documents and manages them through their lifecycle. All functionality
// lives in the internal/cli package, which defines cobra commands.
package main

import (
	"github.com/mmr-tortoise/stevedore/internal/cli"
)

// version, commit, and date are set by GoReleaser at build time via
// ldflags. They provide binary identification for --version output.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	rootCmd := cli.NewRootCommand()
	cli.Execute(rootCmd)
}
