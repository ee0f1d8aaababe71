package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the settings the CLI hands to the adapters and services.
// Zero values are replaced by defaults on load.
type Config struct {
	// RootDir is the directory tree to index and watch.
	RootDir string `toml:"root_dir"`
	// DataDir holds the SQLite database. Defaults to <config-dir>/data.
	DataDir string `toml:"data_dir"`
	// CacheDir holds generated thumbnails. Defaults to <config-dir>/cache.
	CacheDir string `toml:"cache_dir"`
	// OCRLang is the tesseract language hint for scanned pages.
	OCRLang string `toml:"ocr_lang"`
	// OCREnabled turns on the OCR fallback for pages without selectable text.
	OCREnabled bool `toml:"ocr_enabled"`
	// BatchSize is the number of documents per write transaction during
	// a full index run.
	BatchSize int `toml:"batch_size"`
	// DebounceSeconds is the window after a file creation during which
	// modify events for the same path are ignored.
	DebounceSeconds int `toml:"debounce"`
	// ReindexIntervalMinutes triggers a periodic full reindex while
	// watching. Zero disables it.
	ReindexIntervalMinutes int `toml:"reindex_interval"`
}

const (
	defaultOCRLang         = "por"
	defaultBatchSize       = 10
	defaultDebounceSeconds = 2
)

// ConfigStore loads and persists the TOML configuration file in the
// pdfdex config directory.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	cfg      Config
}

// NewConfigStore creates a TOML-based config store.
// If configDir is empty, defaults to ~/.pdfdex/config.toml.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".pdfdex")
	}

	// Ensure directory exists
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, "config.toml"),
	}

	// Load existing data if file exists
	if err := s.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	return s, nil
}

// Config returns a copy of the current configuration with defaults
// applied.
func (s *ConfigStore) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg := s.cfg
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(filepath.Dir(s.filePath), "data")
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = filepath.Join(filepath.Dir(s.filePath), "cache")
	}
	if cfg.OCRLang == "" {
		cfg.OCRLang = defaultOCRLang
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.DebounceSeconds <= 0 {
		cfg.DebounceSeconds = defaultDebounceSeconds
	}
	if cfg.ReindexIntervalMinutes < 0 {
		cfg.ReindexIntervalMinutes = 0
	}
	return cfg
}

// SetRootDir stores the indexed tree root and persists immediately.
func (s *ConfigStore) SetRootDir(dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg.RootDir = dir
	return s.save()
}

// Update applies fn to the configuration and persists the result.
func (s *ConfigStore) Update(fn func(*Config)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.cfg)
	return s.save()
}

// Save persists the current configuration to disk.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// save writes configuration to the TOML file (caller must hold lock).
func (s *ConfigStore) save() error {
	data, err := toml.Marshal(s.cfg)
	if err != nil {
		return err
	}

	// Write with restricted permissions
	return os.WriteFile(s.filePath, data, 0600)
}

// Load reads configuration from the TOML file.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			// No config file yet - that's fine, start empty
			s.cfg = Config{}
			return nil
		}
		return err
	}

	var loaded Config
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parsing %s: %w", s.filePath, err)
	}

	s.cfg = loaded
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
