package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbe(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")
	content := []byte("hello nas")
	require.NoError(t, os.WriteFile(path, content, 0644))

	meta, err := Probe(path)
	require.NoError(t, err)

	sum := sha256.Sum256(content)
	assert.Equal(t, path, meta.Path)
	assert.Equal(t, int64(len(content)), meta.Size)
	assert.Equal(t, hex.EncodeToString(sum[:]), meta.Hash)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, info.ModTime().Unix(), meta.Modified)
}

func TestProbeIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stable.txt")
	require.NoError(t, os.WriteFile(path, []byte("untouched content"), 0644))

	first, err := Probe(path)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		meta, err := Probe(path)
		require.NoError(t, err)
		assert.Equal(t, first, meta)
	}
}

func TestProbeMissingFile(t *testing.T) {
	_, err := Probe(filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}

func TestProbeHashAuthoritative(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("same bytes"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("same bytes"), 0644))

	metaA, err := Probe(a)
	require.NoError(t, err)
	metaB, err := Probe(b)
	require.NoError(t, err)

	assert.True(t, metaA.SameContent(metaB))
}
