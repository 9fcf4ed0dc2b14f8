package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	backendMemory = "memory"
	backendSQLite = "sqlite"

	defaultConfigPath = "simulator.toml"
)

// config is the simulator's effective configuration: defaults, then the
// TOML file, then flags that were set explicitly.
type config struct {
	Backend          string
	Database         string
	LogLevel         string
	MaxCallDepth     int
	MemoryLimitPages uint32
}

type fileConfig struct {
	Backend          string `toml:"backend"`
	Database         string `toml:"database"`
	LogLevel         string `toml:"log_level"`
	MaxCallDepth     int    `toml:"max_call_depth"`
	MemoryLimitPages uint32 `toml:"memory_limit_pages"`
}

func defaultConfig() config {
	return config{
		Backend:  backendSQLite,
		Database: "simulator.db",
		LogLevel: "warn",
	}
}

// loadConfig overlays the file at path on cfg. A missing file is only an
// error when required is set.
func loadConfig(cfg config, path string, required bool) (config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !required {
			return cfg, nil
		}
		return config{}, fmt.Errorf("load simulator config: %w", err)
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config{}, fmt.Errorf("load simulator config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return config{}, fmt.Errorf("load simulator config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("backend") {
		cfg.Backend = strings.TrimSpace(raw.Backend)
	}
	if meta.IsDefined("database") {
		cfg.Database = strings.TrimSpace(raw.Database)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("max_call_depth") {
		cfg.MaxCallDepth = raw.MaxCallDepth
	}
	if meta.IsDefined("memory_limit_pages") {
		cfg.MemoryLimitPages = raw.MemoryLimitPages
	}
	return cfg, nil
}

func (c config) validate() error {
	switch c.Backend {
	case backendMemory:
	case backendSQLite:
		if c.Database == "" {
			return fmt.Errorf("sqlite backend needs a database path")
		}
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, backendMemory, backendSQLite)
	}
	if c.MaxCallDepth < 0 {
		return fmt.Errorf("max_call_depth must not be negative")
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}

// newLogger writes human-readable logs at level to w.
func newLogger(level string, w zapcore.WriteSyncer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		w,
		lvl,
	)
	return zap.New(core), nil
}
