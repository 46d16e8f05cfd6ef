package analytics

import (
	"encoding/gob"
	"fmt"
	"os"
	"strings"
	"time"

	"morsel-dashboard/internal/models"
)

const (
	cacheVersion = "v1"
	cacheDir     = ".cache"
)

type cachedSnapshot struct {
	Records  []models.NormalizedRecord
	LoadedAt time.Time
}

// fresh reports whether the cache still reflects the file: the file must
// exist and not have been modified since the cache was written.
func (c *cachedSnapshot) fresh(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.ModTime().Before(c.LoadedAt)
}

func cacheFilename(path string) string {
	return fmt.Sprintf("%s/%s_%s.gob", cacheDir, strings.ReplaceAll(path, "/", "_"), cacheVersion)
}

func (s *Service) saveToCache(path string) error {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return err
	}

	file, err := os.Create(cacheFilename(path))
	if err != nil {
		return err
	}
	defer file.Close()

	s.mu.RLock()
	snapshot := cachedSnapshot{Records: s.records, LoadedAt: s.loadedAt}
	s.mu.RUnlock()

	return gob.NewEncoder(file).Encode(&snapshot)
}

func (s *Service) loadFromCache(path string) (*cachedSnapshot, error) {
	file, err := os.Open(cacheFilename(path))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var snapshot cachedSnapshot
	if err := gob.NewDecoder(file).Decode(&snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}
