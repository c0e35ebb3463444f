// Package main implements the entry point for the filepool server, which
// runs file operations on a bounded pool of execution units and exposes them
// over HTTP.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
)

// main is the entry point for the filepool server.
func main() {
	if err := run(); err != nil {
		log.Fatalf("filepool server: %v", err)
	}
}

// run loads configuration, sets up logging, wires the application and serves
// until SIGINT or SIGTERM.
func run() error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	logger, closeLog, err := setupAppLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog.Close() }()

	app, err := newApplication(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.Run(ctx)
}
