package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/yamledit/propkey"
	"github.com/yamledit/propkey/internal/config"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Load(args, os.Stderr)
	if err != nil {
		return 2
	}
	log := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		return 2
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	recipe := propkey.Recipe{
		OldKey:         cfg.OldKey,
		NewKey:         cfg.NewKey,
		RelaxedBinding: &cfg.Relaxed,
		FilePattern:    cfg.FilePattern,
	}

	sources, err := collectSources(cfg.Paths)
	if err != nil {
		log.Error("reading sources", "error", err)
		return 1
	}
	log.Debug("collected sources", "count", len(sources))

	results, err := recipe.Run(ctx, sources, propkey.WithLogger(log), propkey.WithConcurrency(cfg.Concurrency))
	if err != nil {
		log.Error("run failed", "error", err)
		return 1
	}

	exit := 0
	counts := map[propkey.Outcome]int{}
	for _, res := range results {
		counts[res.Outcome]++
		switch res.Outcome {
		case propkey.Failed:
			exit = 1
		case propkey.Changed:
			if !cfg.Write {
				fmt.Print(res.Diff)
				continue
			}
			if err := writeFile(res.Path, res.After); err != nil {
				log.Error("writing file", "path", res.Path, "error", err)
				exit = 1
			}
		}
	}
	log.Info("done",
		"changed", counts[propkey.Changed],
		"unchanged", counts[propkey.Unchanged],
		"skipped", counts[propkey.Skipped],
		"failed", counts[propkey.Failed],
	)
	return exit
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// collectSources reads every YAML file named in paths, walking directories.
func collectSources(paths []string) ([]propkey.Source, error) {
	var out []propkey.Source
	add := func(path string) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out = append(out, propkey.Source{Path: path, Data: data})
		return nil
	}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if err := add(p); err != nil {
				return nil, err
			}
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != p && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if isYAML(path) {
				return add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return true
	}
	return false
}

func writeFile(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, info.Mode().Perm())
}
