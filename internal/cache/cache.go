// Package cache persists serialized image metadata keyed by source path.
//
// Entries carry the time they were stored. A caller decides whether an entry is
// usable by comparing that time with the source file's modification time (see
// Fresh); the store itself never expires anything.
package cache

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// ErrInvalidKey is returned for an empty cache key.
var ErrInvalidKey = errors.New("invalid cache key")

// Backend names accepted by Open.
const (
	BackendFS     = "fs"
	BackendSQLite = "sqlite"
)

// Entry is one persisted record.
type Entry struct {
	Data     []byte
	StoredAt time.Time
}

// Store is a durable key/value store of metadata records.
//
// Read reports a missing key as (Entry{}, false, nil). Write replaces any
// existing value. Writes to different keys never affect each other.
type Store interface {
	Read(ctx context.Context, key string) (Entry, bool, error)
	Write(ctx context.Context, key string, data []byte) error
	Close() error
}

// Key normalizes a source path into a cache key.
//
// The leading "./" is dropped, separators become forward slashes and the first
// "." is removed, so "./src/images/a.png" becomes "src/images/apng".
func Key(path string) string {
	p := filepath.ToSlash(path)
	p = strings.TrimPrefix(p, "./")
	return strings.Replace(p, ".", "", 1)
}

// FileName returns the filesystem-safe name of the file holding key.
func FileName(key string) string {
	return url.PathEscape(key) + ".json"
}

// Fresh reports whether e was stored strictly after the source was modified.
func Fresh(e Entry, sourceModTime time.Time) bool {
	return e.StoredAt.After(sourceModTime)
}

// Open returns the store for backend rooted at root.
func Open(backend, root string, logger *log.Logger) (Store, error) {
	switch backend {
	case "", BackendFS:
		return NewFileStore(root, logger)
	case BackendSQLite:
		return NewSQLStore(filepath.Join(root, SQLiteFileName), logger)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", backend)
	}
}
