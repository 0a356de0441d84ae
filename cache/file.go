package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// snapshotFormat is the on-disk JSON structure for cache snapshots.
type snapshotFormat struct {
	Version string                 `json:"version"`
	SavedAt string                 `json:"saved_at"`
	Entries map[string]StoredEntry `json:"entries"`
}

const snapshotVersion = "1"

// FileStore persists cache snapshots to a JSON file. Writes go to a
// temporary file in the same directory and are renamed into place, so a
// crash mid-write never leaves a corrupt snapshot behind.
type FileStore struct {
	path string
}

// NewFileStore creates a store writing to path. Parent directories are
// created on the first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the snapshot. A missing file loads as an empty snapshot;
// unreadable or malformed content returns an error the cache treats as
// empty.
func (s *FileStore) Load() (map[string]StoredEntry, error) {
	data, err := os.ReadFile(s.path) // #nosec G304 - path is caller-provided
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]StoredEntry{}, nil
		}
		return nil, fmt.Errorf("reading cache snapshot: %w", err)
	}

	var snapshot snapshotFormat
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("decoding cache snapshot: %w", err)
	}
	if snapshot.Entries == nil {
		return map[string]StoredEntry{}, nil
	}
	return snapshot.Entries, nil
}

// Save atomically replaces the snapshot with entries.
func (s *FileStore) Save(entries map[string]StoredEntry) error {
	data, err := json.MarshalIndent(snapshotFormat{
		Version: snapshotVersion,
		SavedAt: time.Now().UTC().Format(time.RFC3339),
		Entries: entries,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".cache-*.json")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp snapshot: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing cache snapshot: %w", err)
	}
	return nil
}

// Path returns the snapshot file path.
func (s *FileStore) Path() string {
	return s.path
}

// Verify FileStore implements Store
var _ Store = (*FileStore)(nil)
