package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// envPrefix is the prefix of every recognized environment variable,
// e.g. AGENTTRACE_TRACER_TYPE, AGENTTRACE_ENDPOINT.
const envPrefix = "agenttrace"

// FromEnv builds a configuration from defaults overlaid with environment
// variables. A .env file in the working directory is loaded first if present.
func FromEnv() (*Config, error) {
	cfg := DefaultConfig()
	// Missing .env files are fine; variables already set in the process
	// environment take precedence over the file either way.
	_ = godotenv.Load()
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("config: process environment: %w", err)
	}
	return cfg, nil
}

// Load resolves the effective configuration: defaults, then environment
// variables, then the explicit config. Explicitly set fields always win
// over the environment.
func Load(explicit *Config) (*Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}
	if explicit != nil {
		cfg.merge(explicit)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// merge copies every non-zero field of explicit over c.
func (c *Config) merge(explicit *Config) {
	if explicit.TracerType != "" {
		c.TracerType = explicit.TracerType
	}
	if explicit.AppName != "" {
		c.AppName = explicit.AppName
	}
	if explicit.LogsDirPath != "" {
		c.LogsDirPath = explicit.LogsDirPath
	}
	if explicit.LogFilename != "" {
		c.LogFilename = explicit.LogFilename
	}
	if explicit.Endpoint != "" {
		c.Endpoint = explicit.Endpoint
	}
	if explicit.Protocol != "" {
		c.Protocol = explicit.Protocol
	}
	if explicit.Insecure {
		c.Insecure = true
	}
	if len(explicit.Headers) > 0 {
		c.Headers = explicit.Headers
	}
	if len(explicit.ResourceAttributes) > 0 {
		c.ResourceAttributes = explicit.ResourceAttributes
	}
	if explicit.MaxBatchSize > 0 {
		c.MaxBatchSize = explicit.MaxBatchSize
	}
	if explicit.MaxWaitInterval > 0 {
		c.MaxWaitInterval = explicit.MaxWaitInterval
	}
	if explicit.QueueSize > 0 {
		c.QueueSize = explicit.QueueSize
	}
	if explicit.MaxAttempts > 0 {
		c.MaxAttempts = explicit.MaxAttempts
	}
	if explicit.BackoffBase > 0 {
		c.BackoffBase = explicit.BackoffBase
	}
	if explicit.ExportTimeout > 0 {
		c.ExportTimeout = explicit.ExportTimeout
	}
	if explicit.MaxOpenSpans > 0 {
		c.MaxOpenSpans = explicit.MaxOpenSpans
	}
}
