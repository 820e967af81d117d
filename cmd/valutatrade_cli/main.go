package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/SscSPs/valutatrade_hub/internal/cli"
	"github.com/SscSPs/valutatrade_hub/internal/platform/bootstrap"
	"github.com/SscSPs/valutatrade_hub/internal/platform/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.ExitError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rt, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.ExitError
	}
	defer rt.Close()

	app := cli.New(rt.Services, cli.NewSessionStore(cfg.SessionFile), cfg.BaseCurrency, cli.WithLogger(logger))
	return app.Run(ctx, os.Args[1:])
}
