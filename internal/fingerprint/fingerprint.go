package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/irjeyaraj/UGNasSync/internal/model"
)

// Probe computes the identity fingerprint of one file: byte size, unix
// modification time and the SHA-256 of the full current content.
// Probing an unmodified file any number of times yields identical
// results.
func Probe(path string) (model.FileMetadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		return model.FileMetadata{}, fmt.Errorf("failed to read file metadata %s: %w", path, err)
	}

	hash, err := hashFile(path)
	if err != nil {
		return model.FileMetadata{}, err
	}

	return model.FileMetadata{
		Path:     path,
		Size:     info.Size(),
		Modified: info.ModTime().Unix(),
		Hash:     hash,
	}, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file for hashing %s: %w", path, err)
	}

	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
