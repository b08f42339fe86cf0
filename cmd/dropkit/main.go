// Package main is the entry point for the dropkit CLI.
//
// dropkit creates a single DigitalOcean droplet that only accepts the
// caller's SSH key. The key is registered on the account when it is missing,
// and the droplet is configured either by cloud-init at first boot or by a
// local script run over SSH.
//
// Commands: init, plan, keys, apply.
//
// For detailed usage information, run:
//
//	dropkit --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/imamik/dropkit/cmd/dropkit/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
