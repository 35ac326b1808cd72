// Package main is the entry point for the todoboard CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"todoboard/internal/cli"
	"todoboard/internal/commands"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// Commands register themselves via init(); the runtime picks the
	// backend from config.toml
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, nil)

	// Run and exit with code
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}
