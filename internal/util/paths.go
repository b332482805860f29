package util

import (
	"fmt"
	"os"
	"path/filepath"
)

// StateDir returns the per-user state directory (~/.ugnassync),
// creating it if needed. The sync state database, run history,
// transient SMB credentials and the daemon lock all live here.
func StateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home dir: %w", err)
	}

	dir := filepath.Join(home, ".ugnassync")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create state dir: %w", err)
	}

	return dir, nil
}
