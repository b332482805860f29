package model

// FileMetadata is the identity fingerprint of a single file at probe
// time. Hash is the hex-encoded SHA-256 of the full content and is
// authoritative for content equality; Size and Modified feed the
// mtime/size divergence checks.
type FileMetadata struct {
	Path     string
	Size     int64
	Modified int64
	Hash     string
}

// SameContent reports whether two fingerprints describe identical
// content, regardless of size or modification time.
func (m FileMetadata) SameContent(other FileMetadata) bool {
	return m.Hash == other.Hash
}
