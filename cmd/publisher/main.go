package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/learned-geek/socialpress/internal/app"
	"github.com/learned-geek/socialpress/internal/config"
	"github.com/learned-geek/socialpress/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "publisher start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	log.InfoObj("publisher starting", "config", map[string]any{
		"app_name":    cfg.AppName,
		"env":         cfg.Env,
		"listen_addr": cfg.ListenAddr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.ErrorObj("failed to initialize publisher", "error", err)
		return err
	}
	defer application.Close()

	if err := application.Run(ctx); err != nil {
		return fmt.Errorf("publisher run: %w", err)
	}

	return nil
}
