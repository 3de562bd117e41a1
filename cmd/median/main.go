package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/shubham-shewale/price-median/cmd/median/internal/app"
	"github.com/shubham-shewale/price-median/pkg/config"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("median", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var cfgPath, configPath string
	fs.StringVar(&cfgPath, "cfg", "", "path to config.toml")
	fs.StringVar(&configPath, "config", "", "path to config.toml")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return app.ExitOK
		}
		fmt.Fprintf(stderr, "Failed to parse arguments: %v\n", err)
		return app.ExitUsage
	}

	path := cfgPath
	if path == "" {
		path = configPath
	}
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			wd = "."
		}
		path = filepath.Join(wd, "config.toml")
	}

	// Bootstrap logger until the configured one is available
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logger: %v\n", err)
		return app.ExitConfig
	}

	logger.Info("Reading configuration", zap.String("path", path))
	cfg, err := config.LoadConfig(path)
	if err != nil {
		logger.Error("Failed to load config", zap.Error(err))
		logger.Sync()
		return app.ExitConfig
	}

	logger, err = config.NewLogger(cfg.Logger)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logger: %v\n", err)
		return app.ExitConfig
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err = app.Run(ctx, cfg, logger)
	code := app.ExitCode(err)
	if code == app.ExitInterrupted {
		logger.Warn("Shutdown signal received, output left as written so far")
	} else if err != nil {
		logger.Error("Run failed", zap.Error(err), zap.Int("exit_code", code))
	}
	return code
}
