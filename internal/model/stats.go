package model

import "time"

// SyncStats aggregates one orchestrator run for a single profile.
type SyncStats struct {
	FilesTransferred  int64
	BytesTransferred  int64
	Duration          time.Duration
	ConflictsDetected int
	ConflictsSkipped  int
	ConflictsResolved int
}

// Clean reports whether the run completed without leaving unresolved
// conflicts behind.
func (s SyncStats) Clean() bool {
	return s.ConflictsSkipped == 0
}
