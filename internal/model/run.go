package model

import (
	"time"

	"gorm.io/gorm"
)

type RunStatus string

const (
	RunSuccess RunStatus = "SUCCESS"
	RunWarning RunStatus = "WARNING"
	RunFailed  RunStatus = "FAILED"
)

type RunTrigger string

const (
	TriggerBatch RunTrigger = "BATCH"
	TriggerWatch RunTrigger = "WATCH"
)

// RunRecord is the persisted summary of one profile sync run.
type RunRecord struct {
	gorm.Model
	Profile           string     `gorm:"not null"`
	Mode              SyncMode   `gorm:"not null"`
	Trigger           RunTrigger `gorm:"not null"`
	Files             int64      `gorm:"not null"`
	Bytes             int64      `gorm:"not null"`
	ConflictsDetected int        `gorm:"not null"`
	ConflictsSkipped  int        `gorm:"not null"`
	ConflictsResolved int        `gorm:"not null"`
	DurationMS        int64      `gorm:"not null"`
	Status            RunStatus  `gorm:"not null"`
	ErrMsg            string
	StartedAt         time.Time `gorm:"not null"`
}

// NewRunRecord builds the history row for a finished run.
func NewRunRecord(profile string, mode SyncMode, trigger RunTrigger, stats SyncStats, started time.Time, err error) RunRecord {
	rec := RunRecord{
		Profile:           profile,
		Mode:              mode,
		Trigger:           trigger,
		Files:             stats.FilesTransferred,
		Bytes:             stats.BytesTransferred,
		ConflictsDetected: stats.ConflictsDetected,
		ConflictsSkipped:  stats.ConflictsSkipped,
		ConflictsResolved: stats.ConflictsResolved,
		DurationMS:        stats.Duration.Milliseconds(),
		Status:            RunSuccess,
		StartedAt:         started,
	}

	switch {
	case err != nil:
		rec.Status = RunFailed
		rec.ErrMsg = err.Error()
	case !stats.Clean():
		rec.Status = RunWarning
	}

	return rec
}
