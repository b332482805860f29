package repository

import (
	"fmt"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/irjeyaraj/UGNasSync/internal/model"
	"github.com/irjeyaraj/UGNasSync/internal/util"
)

// Runs persists per-run summaries so past activity can be inspected
// through the CLI and the daemon endpoints.
type Runs struct {
	db *gorm.DB
}

// OpenRuns opens the run history database under the user state
// directory, creating it as needed.
func OpenRuns() (*Runs, error) {
	dir, err := util.StateDir()
	if err != nil {
		return nil, err
	}

	return OpenRunsAt(filepath.Join(dir, "history.db"))
}

// OpenRunsAt opens a run history database at an explicit path.
func OpenRunsAt(path string) (*Runs, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open run history at %s: %w", path, err)
	}

	if err := db.AutoMigrate(&model.RunRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate run history: %w", err)
	}

	return &Runs{db: db}, nil
}

// Save appends one run record.
func (r *Runs) Save(rec model.RunRecord) error {
	return r.db.Create(&rec).Error
}

// Recent returns up to limit records, newest first.
func (r *Runs) Recent(limit int) ([]model.RunRecord, error) {
	var recs []model.RunRecord
	result := r.db.
		Order("started_at desc").
		Limit(limit).
		Find(&recs)

	return recs, result.Error
}
