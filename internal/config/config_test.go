package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("path", "litestore.db", "")
	flags.String("log-level", "info", "")
	return flags
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "litestore.db", cfg.Path)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("LITESTORE_PATH", "/tmp/env.db")
	t.Setenv("LITESTORE_LOG_LEVEL", "debug")

	cfg, err := Load(flagSet())
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.db", cfg.Path)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadFlagsWin(t *testing.T) {
	t.Setenv("LITESTORE_PATH", "/tmp/env.db")
	flags := flagSet()
	require.NoError(t, flags.Parse([]string{"--path", "flag.db"}))

	cfg, err := Load(flags)
	require.NoError(t, err)
	assert.Equal(t, "flag.db", cfg.Path)
}

func TestLoadRejectsBadLevel(t *testing.T) {
	t.Setenv("LITESTORE_LOG_LEVEL", "loud")
	_, err := Load(nil)
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = ParseLevel("")
	assert.Error(t, err)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".litestore.yaml"),
		[]byte("path: file.db\nlog-level: warn\n"), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	cfg, err := Load(flagSet())
	require.NoError(t, err)
	assert.Equal(t, "file.db", cfg.Path)
	assert.Equal(t, "warn", cfg.LogLevel)
}
