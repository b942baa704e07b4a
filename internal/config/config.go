// Package config resolves process settings from an optional .env file,
// command-line flags and SHEETJSON_* environment variables.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"sheetjson/internal/common"
)

// Environment variables read by Load.
const (
	EnvAddr        = "SHEETJSON_ADDR"
	EnvStatsDSN    = "SHEETJSON_STATS_DSN"
	EnvMaxUploadMB = "SHEETJSON_MAX_UPLOAD_MB"
	EnvLogLevel    = "SHEETJSON_LOG_LEVEL"
)

const (
	DefaultAddr        = ":8080"
	DefaultMaxUploadMB = 10
)

// ErrInvalidValue is returned when a flag or variable cannot be parsed.
var ErrInvalidValue = errors.New("invalid configuration value")

// Config holds the process settings. Commands that do not register a
// setting's flag see its default.
type Config struct {
	Addr        string
	StatsDSN    string
	MaxUploadMB int
	LogLevel    slog.Level
}

// MaxUploadBytes is the request body limit derived from MaxUploadMB.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// Lookup reads one environment variable.
type Lookup func(key string) (string, bool)

// Load reads .env (when present) into the process environment, registers
// -log-level on fs, parses args and applies environment overrides. A
// variable wins over the flag default; an explicitly passed flag wins over
// the variable.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	_ = godotenv.Load()

	return load(fs, args, os.LookupEnv, scopeCommon)
}

// LoadStats is Load plus -stats-dsn.
func LoadStats(fs *flag.FlagSet, args []string) (*Config, error) {
	_ = godotenv.Load()

	return load(fs, args, os.LookupEnv, scopeStats)
}

// LoadServe is LoadStats plus the listener and upload settings.
func LoadServe(fs *flag.FlagSet, args []string) (*Config, error) {
	_ = godotenv.Load()

	return load(fs, args, os.LookupEnv, scopeServe)
}

// scope selects which flags a command registers. Each scope includes the
// ones before it.
type scope int

const (
	scopeCommon scope = iota
	scopeStats
	scopeServe
)

func load(fs *flag.FlagSet, args []string, env Lookup, sc scope) (*Config, error) {
	cfg := &Config{Addr: DefaultAddr, MaxUploadMB: DefaultMaxUploadMB}

	var level string

	if sc >= scopeStats {
		fs.StringVar(&cfg.StatsDSN, "stats-dsn", "", "sqlite DSN for usage counters (empty keeps them in memory)")
	}

	if sc >= scopeServe {
		fs.StringVar(&cfg.Addr, "addr", DefaultAddr, "listen address")
		fs.IntVar(&cfg.MaxUploadMB, "max-upload-mb", DefaultMaxUploadMB, "maximum upload size in megabytes")
	}

	fs.StringVar(&level, "log-level", "info", "log level: debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if err := applyEnv(cfg, env, sc, set); err != nil {
		return nil, err
	}

	if v, ok := lookupNonEmpty(env, EnvLogLevel); ok && !set["log-level"] {
		level = v
	}

	if cfg.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("%w: max upload must be positive, got %d", ErrInvalidValue, cfg.MaxUploadMB)
	}

	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	cfg.LogLevel = lvl
	cfg.Addr = normalizeAddr(cfg.Addr)

	return cfg, nil
}

func applyEnv(cfg *Config, env Lookup, sc scope, set map[string]bool) error {
	if v, ok := lookupNonEmpty(env, EnvStatsDSN); ok && sc >= scopeStats && !set["stats-dsn"] {
		cfg.StatsDSN = v
	}

	if sc < scopeServe {
		return nil
	}

	if v, ok := lookupNonEmpty(env, EnvAddr); ok && !set["addr"] {
		cfg.Addr = v
	}

	if v, ok := lookupNonEmpty(env, EnvMaxUploadMB); ok && !set["max-upload-mb"] {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidValue, EnvMaxUploadMB, v)
		}

		cfg.MaxUploadMB = n
	}

	return nil
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level

	name := common.FirstNonEmpty(strings.TrimSpace(s), "info")
	if err := lvl.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalidValue, s)
	}

	return lvl, nil
}

// normalizeAddr turns a bare port such as "9000" into ":9000".
func normalizeAddr(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return DefaultAddr
	}

	if _, err := strconv.Atoi(addr); err == nil {
		return ":" + addr
	}

	return addr
}

func lookupNonEmpty(env Lookup, key string) (string, bool) {
	v, ok := env(key)
	v = strings.TrimSpace(v)

	return v, ok && v != ""
}
