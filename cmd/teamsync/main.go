// Package main is the entry point for the teamsync CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"teamsync/internal/api"
	"teamsync/internal/cli"
	"teamsync/internal/commands"
	"teamsync/internal/config"
	"teamsync/internal/service"
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

	// Create service factory
	factory := func(ctx context.Context, cfg *config.Config, tokens oauth2.TokenSource, log *zap.Logger) (service.Service, error) {
		return api.New(api.Options{
			BaseURL: cfg.APIURL,
			Tokens:  tokens,
			Timeout: cfg.Timeout,
			Logger:  log,
		}), nil
	}

	// Create dispatcher
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	// Run and exit with code
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}
