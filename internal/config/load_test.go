package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupEnv sets up environment variables for testing
func setupEnv(t *testing.T, envVars map[string]string) func() {
	// Save current environment values
	originalValues := make(map[string]string)
	for name := range envVars {
		originalValues[name] = os.Getenv(name)
	}

	for name, value := range envVars {
		err := os.Setenv(name, value)
		require.NoError(t, err, "Failed to set environment variable %s", name)
	}

	return func() {
		for name, value := range originalValues {
			if value == "" {
				_ = os.Unsetenv(name)
			} else {
				_ = os.Setenv(name, value)
			}
		}
	}
}

// TestLoadDefaults verifies the defaults applied when nothing is configured.
func TestLoadDefaults(t *testing.T) {
	cleanup := setupEnv(t, map[string]string{
		"FILEPOOL_SERVER_PORT":      "",
		"FILEPOOL_SERVER_LOG_LEVEL": "",
		"FILEPOOL_POOL_MAX_SLOTS":   "",
	})
	defer cleanup()

	cfg, err := Load()

	require.NoError(t, err, "Load() should not return an error with default values")
	require.NotNil(t, cfg)
	assert.Equal(t, 3000, cfg.Server.Port, "Default server port should be 3000")
	assert.Equal(t, "info", cfg.Server.LogLevel, "Default log level should be 'info'")
	assert.Equal(t, "*", cfg.Server.CORSAllowedOrigin)
	assert.Empty(t, cfg.Server.LogFile)
	assert.Equal(t, runtime.NumCPU(), cfg.Pool.MaxSlots, "Default slot bound is the CPU count")
	assert.Equal(t, time.Duration(0), cfg.Pool.TaskTimeout)
	assert.Equal(t, 10*time.Second, cfg.Pool.ShutdownTimeout)
}

// TestLoadFromEnv verifies that the Load function correctly reads values from environment variables.
func TestLoadFromEnv(t *testing.T) {
	cleanup := setupEnv(t, map[string]string{
		"FILEPOOL_SERVER_PORT":                "9090",
		"FILEPOOL_SERVER_LOG_LEVEL":           "debug",
		"FILEPOOL_SERVER_CORS_ALLOWED_ORIGIN": "https://example.org",
		"FILEPOOL_POOL_MAX_SLOTS":             "3",
		"FILEPOOL_POOL_TASK_TIMEOUT":          "1500ms",
		"FILEPOOL_POOL_SHUTDOWN_TIMEOUT":      "2s",
	})
	defer cleanup()

	cfg, err := Load()

	require.NoError(t, err, "Load() should not return an error with valid environment variables")
	require.NotNil(t, cfg)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "https://example.org", cfg.Server.CORSAllowedOrigin)
	assert.Equal(t, 3, cfg.Pool.MaxSlots)
	assert.Equal(t, 1500*time.Millisecond, cfg.Pool.TaskTimeout)
	assert.Equal(t, 2*time.Second, cfg.Pool.ShutdownTimeout)
}

// TestLoadFromFile verifies that a config file is read and that environment
// variables still win over it.
func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := "server:\n  port: 4000\n  log_level: warn\npool:\n  max_slots: 2\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))

	cleanup := setupEnv(t, map[string]string{
		"FILEPOOL_CONFIG_DIR":       dir,
		"FILEPOOL_SERVER_PORT":      "",
		"FILEPOOL_SERVER_LOG_LEVEL": "error",
		"FILEPOOL_POOL_MAX_SLOTS":   "",
	})
	defer cleanup()

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Server.Port, "port comes from the file")
	assert.Equal(t, "error", cfg.Server.LogLevel, "env overrides the file")
	assert.Equal(t, 2, cfg.Pool.MaxSlots)
}

// TestLoadValidationErrors verifies that the Load function correctly validates the configuration.
func TestLoadValidationErrors(t *testing.T) {
	testCases := []struct {
		name    string
		envVars map[string]string
	}{
		{
			name:    "Invalid port number",
			envVars: map[string]string{"FILEPOOL_SERVER_PORT": "999999"},
		},
		{
			name:    "Invalid log level",
			envVars: map[string]string{"FILEPOOL_SERVER_LOG_LEVEL": "invalid-level"},
		},
		{
			name:    "Negative slot bound",
			envVars: map[string]string{"FILEPOOL_POOL_MAX_SLOTS": "-1"},
		},
		{
			name:    "Negative task timeout",
			envVars: map[string]string{"FILEPOOL_POOL_TASK_TIMEOUT": "-5s"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cleanup := setupEnv(t, tc.envVars)
			defer cleanup()

			cfg, err := Load()

			require.Error(t, err, "Load() should return an error with invalid configuration")
			assert.Contains(t, err.Error(), "validation failed")
			assert.Nil(t, cfg, "Config should be nil when an error occurs")
		})
	}
}
