package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/phrazzld/filepool/internal/config"
	"github.com/phrazzld/filepool/internal/platform/logger"
)

// setupAppLogger configures and initializes the application logger based on config settings.
// The returned closer releases the optional log file.
func setupAppLogger(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	l, closer, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	return l, closer, nil
}
