package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("debug: true\npause_prompt: \"[enter]\"\n"))
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, "[enter]", cfg.PausePrompt)
	assert.Equal(t, Default().InputPrompt, cfg.InputPrompt)
	assert.Equal(t, 1000, cfg.MaxDepth)
}

func TestParseRejectsBadInput(t *testing.T) {
	_, err := Parse([]byte("debug: [oops"))
	assert.Error(t, err)

	_, err = Parse([]byte("max_depth: 0"))
	assert.EqualError(t, err, "max_depth must be positive, got 0")
}

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	path := filepath.Join(t.TempDir(), "mslash.yaml")
	require.NoError(t, os.WriteFile(path, []byte("history_file: /tmp/h\nmax_depth: 50\n"), 0o644))

	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/h", cfg.HistoryFile)
	assert.Equal(t, 50, cfg.MaxDepth)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(errors.Cause(err)))
}
