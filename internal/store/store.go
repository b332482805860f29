package store

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/irjeyaraj/UGNasSync/internal/model"
	"github.com/irjeyaraj/UGNasSync/internal/util"
)

// ErrUnavailable marks failures to create or open the backing database.
// Callers treat it as a soft failure: conflict detection degrades to
// best-effort instead of aborting the run.
var ErrUnavailable = errors.New("sync state store unavailable")

// Store is the durable path -> fingerprint table consulted and written
// by the conflict resolver. SQLite's own transaction semantics isolate
// concurrent callers; no in-process lock is held around statements.
type Store struct {
	db *gorm.DB
}

// Open opens the per-installation sync state database under the user
// state directory, creating both as needed.
func Open() (*Store, error) {
	dir, err := util.StateDir()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	return OpenAt(filepath.Join(dir, "sync_state.db"))
}

// OpenAt opens a sync state database at an explicit path.
func OpenAt(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s: %w", ErrUnavailable, path, err)
	}

	if err := db.AutoMigrate(&model.SyncStateRecord{}); err != nil {
		return nil, fmt.Errorf("%w: failed to migrate: %w", ErrUnavailable, err)
	}

	return &Store{db: db}, nil
}

// Get returns the record for path, or nil when no reconciliation has
// been recorded yet.
func (s *Store) Get(path string) (*model.SyncStateRecord, error) {
	var rec model.SyncStateRecord
	err := s.db.First(&rec, "path = ?", path).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sync state: %w", err)
	}

	return &rec, nil
}

// Put inserts or replaces the record keyed by its path.
func (s *Store) Put(rec model.SyncStateRecord) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}},
		UpdateAll: true,
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to save sync state for %s: %w", rec.Path, err)
	}

	return nil
}
