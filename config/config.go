package config

import (
	"fmt"
	"regexp"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/snippetlab/verifier/safety"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Sandbox SandboxConfig `mapstructure:"sandbox"`
	Safety  SafetyConfig  `mapstructure:"safety"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Transport string `mapstructure:"transport"`
	HTTPPort  int    `mapstructure:"http_port"`
}

// SandboxConfig holds execution configuration
type SandboxConfig struct {
	TimeoutMs         int      `mapstructure:"timeout_ms"`
	MaxSourceBytes    int      `mapstructure:"max_source_bytes"`
	CapabilityMarkers []string `mapstructure:"capability_markers"`
}

// SafetyConfig holds the ordered table of blocking/advisory pattern
// rules. An empty table selects the built-in defaults.
type SafetyConfig struct {
	Rules []safety.RuleSpec `mapstructure:"rules"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Mode  string `mapstructure:"mode"`
	Level string `mapstructure:"level"`
}

// New loads and validates the application configuration
func New() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set default values
	viper.SetDefault("server.transport", "stdio")
	viper.SetDefault("server.http_port", 8080)
	viper.SetDefault("sandbox.timeout_ms", 5000)
	viper.SetDefault("sandbox.max_source_bytes", 65536)
	viper.SetDefault("sandbox.capability_markers", []string{
		"unable to find source",
		"not in std",
		"not provided by the sandbox",
	})
	viper.SetDefault("logging.mode", "production")
	viper.SetDefault("logging.level", "info")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// If config file not found, continue with defaults
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

// validate ensures the configuration is valid
func (c *Config) validate() error {
	if c.Server.Transport != "stdio" && c.Server.Transport != "http" {
		return fmt.Errorf("invalid server.transport: %s, must be 'stdio' or 'http'", c.Server.Transport)
	}

	if c.Sandbox.TimeoutMs <= 0 {
		return fmt.Errorf("sandbox.timeout_ms must be positive, got: %d", c.Sandbox.TimeoutMs)
	}

	if c.Sandbox.MaxSourceBytes <= 0 {
		return fmt.Errorf("sandbox.max_source_bytes must be positive, got: %d", c.Sandbox.MaxSourceBytes)
	}

	for i, rule := range c.Safety.Rules {
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			return fmt.Errorf("invalid safety.rules[%d].pattern: %w", i, err)
		}
	}

	if c.Logging.Mode != "production" && c.Logging.Mode != "development" {
		return fmt.Errorf("invalid logging.mode: %s, must be 'production' or 'development'", c.Logging.Mode)
	}

	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}

	return nil
}

// Timeout returns the execution timeout as a duration
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Sandbox.TimeoutMs) * time.Millisecond
}
