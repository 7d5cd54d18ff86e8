// Package file provides a TOML-backed settings store. Settings live in a
// single config.toml under the finquery config directory.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/finquery/internal/core/domain"
)

// SettingsStore reads and writes AppSettings as TOML.
type SettingsStore struct {
	mu       sync.Mutex
	filePath string
}

// NewSettingsStore creates a settings store. If configDir is empty,
// defaults to ~/.finquery.
func NewSettingsStore(configDir string) (*SettingsStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		configDir = filepath.Join(home, ".finquery")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	return &SettingsStore{
		filePath: filepath.Join(configDir, "config.toml"),
	}, nil
}

// Load reads settings from disk. A missing file yields the defaults.
// Zero-valued retrieval knobs in an existing file are backfilled with
// defaults so a hand-edited partial config stays usable.
func (s *SettingsStore) Load() (domain.AppSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := domain.DefaultAppSettings()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &settings); err != nil {
		return domain.DefaultAppSettings(), fmt.Errorf("parsing config: %w", err)
	}

	backfillRetrieval(&settings.Retrieval)
	return settings, nil
}

// Save writes settings to disk with restricted permissions; the file can
// hold API keys.
func (s *SettingsStore) Save(settings domain.AppSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := toml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Path returns the configuration file path.
func (s *SettingsStore) Path() string {
	return s.filePath
}

func backfillRetrieval(r *domain.RetrievalSettings) {
	defaults := domain.DefaultRetrievalSettings()
	if r.TopK <= 0 {
		r.TopK = defaults.TopK
	}
	if r.RelevanceThreshold <= 0 {
		r.RelevanceThreshold = defaults.RelevanceThreshold
	}
	if r.RecentYearWindow <= 0 {
		r.RecentYearWindow = defaults.RecentYearWindow
	}
	if r.SourcePreviewLen <= 0 {
		r.SourcePreviewLen = defaults.SourcePreviewLen
	}
	if r.CacheSimilarityThreshold <= 0 {
		r.CacheSimilarityThreshold = defaults.CacheSimilarityThreshold
	}
}
