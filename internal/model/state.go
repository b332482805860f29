package model

// SyncStateRecord is the fingerprint recorded at a file's last
// successful reconciliation. One row per path, replaced wholesale on
// every resolution; rows are never evicted.
type SyncStateRecord struct {
	Path     string `gorm:"primaryKey"`
	Size     int64  `gorm:"not null"`
	Modified int64  `gorm:"not null"`
	Hash     string `gorm:"not null"`
	LastSync int64  `gorm:"not null"`
}

func (SyncStateRecord) TableName() string {
	return "sync_state"
}
