package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/liangyou/nodeswitch/internal/cli"
	"github.com/liangyou/nodeswitch/internal/config"
	"github.com/liangyou/nodeswitch/internal/env"
	"github.com/liangyou/nodeswitch/internal/platform"
	"github.com/liangyou/nodeswitch/internal/storage"
	"github.com/liangyou/nodeswitch/internal/version"
)

const appVersion = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := cli.NewApp(os.Stdout, os.Stderr, buildServices, appVersion)
	if err := app.Run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildServices(settings cli.Settings) (*cli.Services, error) {
	cfg, err := config.Load(config.Options{
		ConfigFile: settings.ConfigFile,
		EnvFile:    settings.EnvFile,
	})
	if err != nil {
		return nil, err
	}
	if err := platform.NewChecker(cfg).Validate(); err != nil {
		return nil, err
	}

	logger := settings.Logger
	store, err := storage.NewFileStorage(cfg, logger)
	if err != nil {
		return nil, err
	}
	locator := version.NewLocator(cfg, logger)
	resolver := version.NewResolver(store, locator, cfg, logger)
	installer := version.NewInstaller(cfg, os.Stderr, logger)

	binary, err := os.Executable()
	if err != nil {
		binary = "nodeswitch"
	}

	return &cli.Services{
		Switcher: version.NewSwitcher(cfg, resolver, locator, installer, logger),
		Resolver: resolver,
		Lister:   version.NewLister(cfg, locator),
		System:   version.NewSystemQuery(cfg),
		Shell:    env.NewShellManager(binary, nil),
	}, nil
}
