package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	apperrors "github.com/xmenbro/AutoRepairCenter/pkg/errors"
	"github.com/xmenbro/AutoRepairCenter/pkg/logger"
	"github.com/xmenbro/AutoRepairCenter/services/storefront/internal/app"
	"github.com/xmenbro/AutoRepairCenter/services/storefront/internal/config"
)

func main() {
	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Logs go to stderr so command output stays clean.
	log := logger.NewWithOptions(logger.Options{
		Service: "storefront",
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Writer:  os.Stderr,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	application, err := app.NewApp(ctx, cfg, log, os.Stdout)
	if err != nil {
		log.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	runErr := application.Run(ctx, os.Args[1:])
	_ = application.Close(context.Background())

	if runErr != nil {
		fmt.Fprintln(os.Stderr, apperrors.UserMessage(runErr))
		os.Exit(1)
	}
}
