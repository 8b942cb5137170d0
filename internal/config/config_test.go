package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/pmtools/vcsbridge/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestDefault(t *testing.T) {
	t.Setenv("HOME", "/home/dev")

	cfg := config.Default()

	assert.Equal(t, "127.0.0.1:3000", cfg.HTTP.Address)
	assert.True(t, cfg.HTTP.OpenAPI.Enabled)
	assert.Equal(t, filepath.Join("/home/dev", ".pm", "data"), cfg.Storage.DataDir)
	assert.Equal(t, 10*time.Minute, cfg.Storage.GCInterval)
	assert.Equal(t, filepath.Join("/home/dev", ".pm", "config.json"), cfg.Preferences.Path)
	assert.Equal(t, "git", cfg.Git.Binary)
	assert.Equal(t, "svn", cfg.Svn.Binary)
	assert.Equal(t, 100, cfg.History.MaxEntries)
}
