package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// SQLiteFileName is the database file created under the cache directory.
const SQLiteFileName = "image-data.db"

// sqlEntry is the row layout of the entries table.
type sqlEntry struct {
	Key      string `gorm:"primaryKey;column:cache_key"`
	Data     []byte
	StoredAt int64 // unix nanoseconds
}

func (sqlEntry) TableName() string {
	return "entries"
}

// SQLStore keeps entries in a single SQLite database, one row per key.
type SQLStore struct {
	db     *gorm.DB
	logger *log.Logger
}

// NewSQLStore opens (creating if needed) the database at path.
func NewSQLStore(path string, l *log.Logger) (*SQLStore, error) {
	if l == nil {
		l = log.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory for %s: %w", path, err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to cache database %s: %w", path, err)
	}

	// One connection serializes writers; SQLite rejects concurrent writes.
	inner, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access cache database %s: %w", path, err)
	}
	inner.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&sqlEntry{}); err != nil {
		return nil, fmt.Errorf("cache database migration failed: %w", err)
	}

	return &SQLStore{db: db, logger: l}, nil
}

// Read returns the row for key.
func (s *SQLStore) Read(ctx context.Context, key string) (Entry, bool, error) {
	if key == "" {
		return Entry{}, false, ErrInvalidKey
	}

	var row sqlEntry
	err := s.db.WithContext(ctx).Where("cache_key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to read cache entry %s: %w", key, err)
	}

	return Entry{Data: row.Data, StoredAt: time.Unix(0, row.StoredAt)}, true, nil
}

// Write upserts data under key, stamping the current time.
func (s *SQLStore) Write(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return ErrInvalidKey
	}

	row := sqlEntry{Key: key, Data: data, StoredAt: time.Now().UnixNano()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to write cache entry %s: %w", key, err)
	}
	s.logger.Debug("cache entry stored", "key", key, "bytes", len(data))

	return nil
}

// Close releases the underlying database handle.
func (s *SQLStore) Close() error {
	inner, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to close cache database, can't read inner handle: %w", err)
	}
	if err := inner.Close(); err != nil {
		return fmt.Errorf("failed to close cache database: %w", err)
	}
	return nil
}
