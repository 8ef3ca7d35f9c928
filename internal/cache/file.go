package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// FileStore keeps one JSON file per key under a root directory.
//
// The directory listing is the key space; there is no index. Writes go to a
// temporary file that is renamed over the target, so a reader never sees a
// partially written entry.
type FileStore struct {
	root   string
	logger *log.Logger
}

// NewFileStore creates root if needed and returns a store over it.
func NewFileStore(root string, logger *log.Logger) (*FileStore, error) {
	if logger == nil {
		logger = log.Default()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", root, err)
	}
	return &FileStore{root: root, logger: logger}, nil
}

// Root returns the cache directory.
func (s *FileStore) Root() string {
	return s.root
}

// Path returns the file that holds key.
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.root, FileName(key))
}

// Read returns the entry for key. StoredAt is the file's modification time.
func (s *FileStore) Read(_ context.Context, key string) (Entry, bool, error) {
	if key == "" {
		return Entry{}, false, ErrInvalidKey
	}

	path := s.Path(key)
	st, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to stat cache entry %s: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to read cache entry %s: %w", path, err)
	}

	return Entry{Data: data, StoredAt: st.ModTime()}, true, nil
}

// Write stores data under key, replacing any previous value.
func (s *FileStore) Write(_ context.Context, key string, data []byte) error {
	if key == "" {
		return ErrInvalidKey
	}

	path := s.Path(key)
	tmp, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write cache entry %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close cache entry %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		s.logger.Debug("failed to chmod cache entry", "path", tmpName, "err", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace cache entry %s: %w", path, err)
	}

	return nil
}

// Close is a no-op for FileStore.
func (s *FileStore) Close() error {
	return nil
}
