package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot determine home directory")
	}

	store, err := NewConfigStore("")

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(home, ".pdfdex", "config.toml"), store.Path())

	// Cleanup
	_ = os.Remove(store.Path())
}

func TestConfigStore_Defaults(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	cfg := store.Config()
	assert.Equal(t, "", cfg.RootDir)
	assert.Equal(t, filepath.Join(tmpDir, "data"), cfg.DataDir)
	assert.Equal(t, filepath.Join(tmpDir, "cache"), cfg.CacheDir)
	assert.Equal(t, "por", cfg.OCRLang)
	assert.False(t, cfg.OCREnabled)
	assert.Equal(t, 10, cfg.BatchSize)
	assert.Equal(t, 2, cfg.DebounceSeconds)
	assert.Equal(t, 0, cfg.ReindexIntervalMinutes)
}

func TestConfigStore_SetRootDirPersists(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.SetRootDir("/srv/archive"))

	// A fresh store reads the value back from disk.
	reopened, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "/srv/archive", reopened.Config().RootDir)
}

func TestConfigStore_Update(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	err = store.Update(func(c *Config) {
		c.OCREnabled = true
		c.OCRLang = "eng"
		c.BatchSize = 25
	})
	require.NoError(t, err)

	cfg := store.Config()
	assert.True(t, cfg.OCREnabled)
	assert.Equal(t, "eng", cfg.OCRLang)
	assert.Equal(t, 25, cfg.BatchSize)
}

func TestConfigStore_LoadExistingFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := []byte("root_dir = \"/docs\"\nbatch_size = 3\ndebounce = 5\n")
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), content, 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	cfg := store.Config()
	assert.Equal(t, "/docs", cfg.RootDir)
	assert.Equal(t, 3, cfg.BatchSize)
	assert.Equal(t, 5, cfg.DebounceSeconds)
}

func TestConfigStore_LoadMalformedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("not = [toml"), 0600))

	_, err := NewConfigStore(tmpDir)
	assert.Error(t, err)
}
