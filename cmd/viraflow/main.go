// Package main is the entry point for the viraflow CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"viraflow/internal/cli"
	"viraflow/internal/commands"
	"viraflow/internal/config"
	"viraflow/internal/securestore"
	"viraflow/internal/store"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Tasks live in the encrypted database under the config directory.
	factory := func(ctx context.Context, cfg *config.Config) (*store.Store, error) {
		if err := cfg.EnsureDir(); err != nil {
			return nil, fmt.Errorf("create config directory: %w", err)
		}
		kv, err := securestore.Open(cfg.DataPath(), cfg.IdentityPath())
		if err != nil {
			return nil, err
		}
		return store.New(kv, store.WithLogger(cfg.Log())), nil
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}
