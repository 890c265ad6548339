// Package config holds et1c settings: defaults, an optional TOML file and
// ET1_* environment overrides, applied in that order.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strings"

	"github.com/naoina/toml"
	"github.com/xyproto/env/v2"

	"github.com/excyrender/et1/internal/codegen"
	"github.com/excyrender/et1/internal/compiler"
	"github.com/excyrender/et1/internal/passes"
)

// Config is the complete et1c configuration. TOML keys are the field names.
type Config struct {
	Backend        string
	MaxResolveRuns int
	LogLevel       string
	Color          bool
	CacheSize      int
}

// Defaults are used for every setting the file and environment leave out.
var Defaults = Config{
	Backend:        "js",
	MaxResolveRuns: passes.DefaultMaxResolveRuns,
	LogLevel:       "warn",
	Color:          true,
	CacheSize:      compiler.DefaultCacheSize,
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

// Load returns Defaults overlaid with file (when not empty) and then the
// environment.
func Load(file string) (Config, error) {
	cfg := Defaults
	if file != "" {
		if err := loadFile(file, &cfg); err != nil {
			return Config{}, err
		}
	}
	ApplyEnv(&cfg)
	return cfg, cfg.Validate()
}

func loadFile(file string, cfg *Config) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// ApplyEnv overrides cfg with the ET1_* variables that are set.
func ApplyEnv(cfg *Config) {
	cfg.Backend = env.Str("ET1_BACKEND", cfg.Backend)
	cfg.MaxResolveRuns = env.Int("ET1_MAX_RESOLVE_RUNS", cfg.MaxResolveRuns)
	cfg.LogLevel = env.Str("ET1_LOG_LEVEL", cfg.LogLevel)
	cfg.CacheSize = env.Int("ET1_CACHE_SIZE", cfg.CacheSize)
	if env.Bool("ET1_NO_COLOR") {
		cfg.Color = false
	}
}

// Validate reports settings no component would accept.
func (c Config) Validate() error {
	if _, err := codegen.Lookup(c.Backend); err != nil {
		return err
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.MaxResolveRuns < 1 {
		return fmt.Errorf("MaxResolveRuns must be positive, got %d", c.MaxResolveRuns)
	}
	if c.CacheSize < 1 {
		return fmt.Errorf("CacheSize must be positive, got %d", c.CacheSize)
	}
	return nil
}

// ParseLevel maps debug, info, warn and error onto slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return lvl, nil
}

// SlogLevel is the parsed LogLevel; invalid values fall back to warn.
func (c Config) SlogLevel() slog.Level {
	lvl, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelWarn
	}
	return lvl
}

// CompilerOptions derives compiler settings from c.
func (c Config) CompilerOptions(logger *slog.Logger) compiler.Options {
	return compiler.Options{
		Logger:         logger,
		MaxResolveRuns: c.MaxResolveRuns,
		CacheSize:      c.CacheSize,
	}
}

// Dump renders c as TOML.
func (c Config) Dump() ([]byte, error) {
	return tomlSettings.Marshal(&c)
}
