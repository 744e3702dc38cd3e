package config

import (
	"io"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil, io.Discard)
	require.NoError(t, err)
	assert.True(t, cfg.Relaxed)
	assert.False(t, cfg.Write)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, runtime.GOMAXPROCS(0), cfg.Concurrency)
	assert.Equal(t, []string{"."}, cfg.Paths)
	assert.Error(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PROPKEY_FROM", "a.b")
	t.Setenv("PROPKEY_TO", "c.d")
	t.Setenv("PROPKEY_RELAXED", "false")
	t.Setenv("PROPKEY_GLOB", "**/*.yml")
	t.Setenv("PROPKEY_WRITE", "true")
	t.Setenv("PROPKEY_CONCURRENCY", "3")
	t.Setenv("PROPKEY_LOG_FORMAT", "json")

	cfg, err := Load([]string{"conf"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, Config{
		OldKey:      "a.b",
		NewKey:      "c.d",
		Relaxed:     false,
		FilePattern: "**/*.yml",
		Write:       true,
		Concurrency: 3,
		LogFormat:   "json",
		LogLevel:    "info",
		Paths:       []string{"conf"},
	}, cfg)
	assert.NoError(t, cfg.Validate())
}

func TestFlagsOverrideEnv(t *testing.T) {
	t.Setenv("PROPKEY_FROM", "env.from")
	t.Setenv("PROPKEY_CONCURRENCY", "not-a-number")

	cfg, err := Load([]string{"-from", "flag.from", "-to", "x", "-relaxed=false", "a.yml", "b.yml"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "flag.from", cfg.OldKey)
	assert.Equal(t, "x", cfg.NewKey)
	assert.False(t, cfg.Relaxed)
	assert.Equal(t, runtime.GOMAXPROCS(0), cfg.Concurrency)
	assert.Equal(t, []string{"a.yml", "b.yml"}, cfg.Paths)
}

func TestLoadUnknownFlag(t *testing.T) {
	_, err := Load([]string{"-nope"}, io.Discard)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{OldKey: "a", NewKey: "b", LogFormat: "text"}
	assert.NoError(t, base.Validate())

	c := base
	c.NewKey = ""
	assert.ErrorContains(t, c.Validate(), "-to")

	c = base
	c.LogFormat = "xml"
	assert.ErrorContains(t, c.Validate(), "xml")
}
