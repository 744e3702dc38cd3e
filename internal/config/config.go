package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
)

// Config holds the settings of one propkey invocation. Every flag falls back
// to a PROPKEY_* environment variable, then to a built-in default.
type Config struct {
	OldKey      string
	NewKey      string
	Relaxed     bool
	FilePattern string

	Write       bool
	Concurrency int
	LogFormat   string // "text" or "json"
	LogLevel    string

	Paths []string
}

// Load parses args (without the program name).
func Load(args []string, stderr io.Writer) (Config, error) {
	var cfg Config
	fs := flag.NewFlagSet("propkey", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.OldKey, "from", os.Getenv("PROPKEY_FROM"), "dotted property path to rename; '*' matches one segment")
	fs.StringVar(&cfg.NewKey, "to", os.Getenv("PROPKEY_TO"), "dotted property path to rename to")
	fs.BoolVar(&cfg.Relaxed, "relaxed", envBool("PROPKEY_RELAXED", true), "treat kebab-case, snake_case and camelCase segments as equal")
	fs.StringVar(&cfg.FilePattern, "glob", os.Getenv("PROPKEY_GLOB"), "only rewrite files matching this doublestar pattern")
	fs.BoolVar(&cfg.Write, "write", envBool("PROPKEY_WRITE", false), "write changes back instead of printing diffs")
	fs.IntVar(&cfg.Concurrency, "concurrency", envInt("PROPKEY_CONCURRENCY", runtime.GOMAXPROCS(0)), "files rewritten in parallel")
	fs.StringVar(&cfg.LogFormat, "log-format", envOr("PROPKEY_LOG_FORMAT", "text"), "log format: text or json")
	fs.StringVar(&cfg.LogLevel, "log-level", envOr("PROPKEY_LOG_LEVEL", "info"), "log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.Paths = fs.Args()
	if len(cfg.Paths) == 0 {
		cfg.Paths = []string{"."}
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = runtime.GOMAXPROCS(0)
	}
	return cfg, nil
}

// Validate reports the first missing or unusable setting.
func (c Config) Validate() error {
	if c.OldKey == "" {
		return errors.New("-from (PROPKEY_FROM) is required")
	}
	if c.NewKey == "" {
		return errors.New("-to (PROPKEY_TO) is required")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
