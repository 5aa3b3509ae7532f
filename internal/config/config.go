// Package config loads CLI configuration from file, environment, and
// defaults, and builds the process logger from it.
// Precedence: environment variables > config file > defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config is the CLI's configuration tree.
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Solver SolverConfig `mapstructure:"solver"`
}

// LogConfig selects the logger's verbosity and encoding.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SolverConfig carries the solver knobs the CLI exposes.
type SolverConfig struct {
	// Timeout bounds each solve invocation; zero means no deadline.
	Timeout time.Duration `mapstructure:"timeout"`
	// Workers sizes the batch pool; zero means one worker per CPU.
	Workers int `mapstructure:"workers"`
	// MaxTeamSize caps candidate team cardinality; zero means as many
	// members as the surgery has distinct roles.
	MaxTeamSize int `mapstructure:"max_team_size"`
}

// Load reads configuration. An explicit path must exist; otherwise a
// config.yaml is searched in the working directory and ./config, and a
// missing file falls back to defaults and environment.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("solver.timeout", "30s")
	v.SetDefault("solver.workers", 0)
	v.SetDefault("solver.max_team_size", 0)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("THEATRE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the solver cannot act on.
func (c *Config) Validate() error {
	if c.Solver.Timeout < 0 {
		return fmt.Errorf("config: solver.timeout must not be negative")
	}
	if c.Solver.Workers < 0 {
		return fmt.Errorf("config: solver.workers must not be negative")
	}
	if c.Solver.MaxTeamSize < 0 {
		return fmt.Errorf("config: solver.max_team_size must not be negative")
	}
	return nil
}

// NewLogger builds a zap logger from the log section. The console format
// uses the colored development encoder; anything else gets production JSON.
func NewLogger(cfg LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	switch cfg.Format {
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
