// Package main provides the entry point for the specio CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sumatoshi-tech/specio/cmd/specio/commands"
	"github.com/Sumatoshi-tech/specio/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := commands.NewRootCommand(os.Stdout, os.Stderr).ExecuteContext(ctx)

	stop()

	if err != nil {
		if !commands.Silent(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}

		os.Exit(commands.ExitCode(err))
	}
}
