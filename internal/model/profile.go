package model

// SyncMode selects the transfer tool's behavior for one profile.
type SyncMode string

const (
	ModeMirror      SyncMode = "mirror"
	ModeOneWay      SyncMode = "one-way"
	ModeTwoWay      SyncMode = "two-way"
	ModeIncremental SyncMode = "incremental"
	ModeBackup      SyncMode = "backup"
)

// Valid reports whether the mode is one of the known sync modes.
func (m SyncMode) Valid() bool {
	switch m {
	case ModeMirror, ModeOneWay, ModeTwoWay, ModeIncremental, ModeBackup:
		return true
	}
	return false
}

// ConflictPolicy decides which replica wins a detected conflict.
type ConflictPolicy string

const (
	PolicySkip      ConflictPolicy = "skip"
	PolicyOverwrite ConflictPolicy = "overwrite"
	PolicyKeep      ConflictPolicy = "keep"
	PolicyNewest    ConflictPolicy = "newest"
	PolicyLargest   ConflictPolicy = "largest"
)

// Valid reports whether the policy is one of the known policies.
func (p ConflictPolicy) Valid() bool {
	switch p {
	case PolicySkip, PolicyOverwrite, PolicyKeep, PolicyNewest, PolicyLargest:
		return true
	}
	return false
}
