package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "./snapshots", config.SnapshotDir)
	assert.Equal(t, 8080, config.Port)
	assert.Equal(t, "127.0.0.1", config.Bind)
	assert.Equal(t, "info", config.Logging.Level)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	config := DefaultConfig()
	config.LogPath = "/var/log/flight.sslog"
	config.Port = 9200
	config.Logging.Level = "debug"

	require.NoError(t, SaveConfig(config, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config, loaded)
}

func TestLoadConfig_NonExistent(t *testing.T) {
	_, err := LoadConfig("/non/existent/config.yaml")
	assert.Error(t, err)
}

func TestLoadConfig_Malformed(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_path: [broken"), 0600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
