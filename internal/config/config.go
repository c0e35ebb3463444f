package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server" validate:"required"`
	Pool   PoolConfig   `mapstructure:"pool"   validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// LogFile, when set, receives a copy of every log line
	LogFile string `mapstructure:"log_file"`

	// CORSAllowedOrigin is sent as Access-Control-Allow-Origin
	CORSAllowedOrigin string `mapstructure:"cors_allowed_origin" validate:"required"`
}

// PoolConfig contains the task pool settings.
type PoolConfig struct {
	// MaxSlots bounds the number of execution units; defaults to the CPU count
	MaxSlots int `mapstructure:"max_slots" validate:"gt=0"`

	// TaskTimeout is the per-task deadline; zero disables it
	TaskTimeout time.Duration `mapstructure:"task_timeout" validate:"gte=0"`

	// ShutdownTimeout bounds how long shutdown waits for running tasks
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}
