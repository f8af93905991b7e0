package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/jaekwang-park/todo-list/internal/client"
	"github.com/jaekwang-park/todo-list/internal/config"
	"github.com/jaekwang-park/todo-list/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "todo:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", config.DefaultClientConfigPath, "path to the client config file")
	flag.Parse()

	cfg, err := config.LoadClient(*configPath)
	if err != nil {
		return err
	}

	// The terminal belongs to the UI, so logs go to a file.
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	logger := log.NewWithOptions(logFile, log.Options{
		ReportTimestamp: true,
		Prefix:          "todo",
	})
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warn("unknown log level, using info", "level", cfg.LogLevel)
	}

	api, err := client.New(cfg.BaseURL, cfg.RequestTimeout)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	logger.Info("starting", "base_url", cfg.BaseURL, "page_size", cfg.PageSize)
	if err := tui.Run(ctx, tui.New(ctx, api, cfg.PageSize, logger)); err != nil {
		logger.Error("ui exited", "err", err)
		return err
	}
	return nil
}
