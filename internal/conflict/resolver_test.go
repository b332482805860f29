package conflict

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/irjeyaraj/UGNasSync/internal/fingerprint"
	"github.com/irjeyaraj/UGNasSync/internal/model"
	"github.com/irjeyaraj/UGNasSync/internal/store"
)

func newTestResolver(t *testing.T, policy model.ConflictPolicy) *Resolver {
	t.Helper()

	st, err := store.OpenAt(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)

	return NewResolver(policy, st, zap.NewNop())
}

func meta(path string, size, modified int64, hash string) model.FileMetadata {
	return model.FileMetadata{Path: path, Size: size, Modified: modified, Hash: hash}
}

func writeFile(t *testing.T, path, content string, mod time.Time) model.FileMetadata {
	t.Helper()

	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(t, os.Chtimes(path, mod, mod))

	m, err := fingerprint.Probe(path)
	require.NoError(t, err)

	return m
}

func assertContent(t *testing.T, path, want string) {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, string(data))
}

func TestDetect(t *testing.T) {
	r := newTestResolver(t, model.PolicySkip)

	rec := &model.SyncStateRecord{Path: "/l", Size: 10, Modified: 100, Hash: "A"}

	tests := []struct {
		name   string
		local  model.FileMetadata
		remote model.FileMetadata
		rec    *model.SyncStateRecord
		want   bool
	}{
		{"no record identical content", meta("/l", 10, 100, "A"), meta("/r", 10, 200, "A"), nil, false},
		{"no record different content", meta("/l", 10, 100, "A"), meta("/r", 10, 100, "B"), nil, true},
		{"neither side changed", meta("/l", 10, 100, "A"), meta("/r", 10, 100, "A"), rec, false},
		{"only local changed", meta("/l", 12, 150, "B"), meta("/r", 10, 100, "A"), rec, false},
		{"only remote changed", meta("/l", 10, 100, "A"), meta("/r", 12, 150, "B"), rec, false},
		{"both sides changed", meta("/l", 12, 150, "B"), meta("/r", 14, 200, "C"), rec, true},
		{"remote touched without content change", meta("/l", 12, 150, "B"), meta("/r", 10, 200, "A"), rec, true},
		{"content changed with stale mtimes", meta("/l", 10, 100, "B"), meta("/r", 10, 90, "C"), rec, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Detect(tt.local, tt.remote, tt.rec))
		})
	}
}

func TestResolveSkip(t *testing.T) {
	r := newTestResolver(t, model.PolicySkip)
	dir := t.TempDir()
	local := writeFile(t, filepath.Join(dir, "local.txt"), "local edit", time.Unix(400, 0))
	remote := writeFile(t, filepath.Join(dir, "remote.txt"), "remote edit", time.Unix(300, 0))

	resolved, err := r.Resolve(local, remote)
	require.NoError(t, err)
	assert.False(t, resolved)

	assertContent(t, local.Path, "local edit")
	assertContent(t, remote.Path, "remote edit")

	rec, err := r.store.Get(local.Path)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestResolveOverwrite(t *testing.T) {
	r := newTestResolver(t, model.PolicyOverwrite)
	dir := t.TempDir()
	local := writeFile(t, filepath.Join(dir, "local.txt"), "local edit", time.Unix(300, 0))
	remote := writeFile(t, filepath.Join(dir, "remote.txt"), "remote edit", time.Unix(400, 0))

	resolved, err := r.Resolve(local, remote)
	require.NoError(t, err)
	assert.True(t, resolved)

	assertContent(t, remote.Path, "local edit")

	rec, err := r.store.Get(local.Path)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, local.Hash, rec.Hash)
	assert.Equal(t, local.Modified, rec.Modified)
	assert.Equal(t, local.Size, rec.Size)
}

func TestResolveKeep(t *testing.T) {
	r := newTestResolver(t, model.PolicyKeep)
	dir := t.TempDir()
	local := writeFile(t, filepath.Join(dir, "local.txt"), "local edit", time.Unix(400, 0))
	remote := writeFile(t, filepath.Join(dir, "remote.txt"), "remote edit", time.Unix(300, 0))

	resolved, err := r.Resolve(local, remote)
	require.NoError(t, err)
	assert.True(t, resolved)

	assertContent(t, remote.Path, "local edit")

	matches, err := filepath.Glob(remote.Path + ".conflict.*")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Regexp(t, `\.conflict\.\d{8}-\d{6}$`, matches[0])
	assertContent(t, matches[0], "remote edit")
}

func TestResolveNewest(t *testing.T) {
	t.Run("local newer", func(t *testing.T) {
		r := newTestResolver(t, model.PolicyNewest)
		dir := t.TempDir()
		local := writeFile(t, filepath.Join(dir, "local.txt"), "local edit", time.Unix(400, 0))
		remote := writeFile(t, filepath.Join(dir, "remote.txt"), "remote edit", time.Unix(300, 0))

		resolved, err := r.Resolve(local, remote)
		require.NoError(t, err)
		assert.True(t, resolved)
		assertContent(t, remote.Path, "local edit")
	})

	t.Run("remote newer", func(t *testing.T) {
		r := newTestResolver(t, model.PolicyNewest)
		dir := t.TempDir()
		local := writeFile(t, filepath.Join(dir, "local.txt"), "local edit", time.Unix(300, 0))
		remote := writeFile(t, filepath.Join(dir, "remote.txt"), "remote edit", time.Unix(400, 0))

		resolved, err := r.Resolve(local, remote)
		require.NoError(t, err)
		assert.True(t, resolved)
		assertContent(t, local.Path, "remote edit")

		rec, err := r.store.Get(remote.Path)
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, remote.Hash, rec.Hash)
	})

	t.Run("tie favors local", func(t *testing.T) {
		r := newTestResolver(t, model.PolicyNewest)
		dir := t.TempDir()
		local := writeFile(t, filepath.Join(dir, "local.txt"), "local edit", time.Unix(300, 0))
		remote := writeFile(t, filepath.Join(dir, "remote.txt"), "remote edit", time.Unix(300, 0))

		resolved, err := r.Resolve(local, remote)
		require.NoError(t, err)
		assert.True(t, resolved)
		assertContent(t, remote.Path, "local edit")
	})
}

func TestResolveLargest(t *testing.T) {
	t.Run("remote larger", func(t *testing.T) {
		r := newTestResolver(t, model.PolicyLargest)
		dir := t.TempDir()
		local := writeFile(t, filepath.Join(dir, "local.txt"), "short", time.Unix(400, 0))
		remote := writeFile(t, filepath.Join(dir, "remote.txt"), "a much longer remote edit", time.Unix(300, 0))

		resolved, err := r.Resolve(local, remote)
		require.NoError(t, err)
		assert.True(t, resolved)
		assertContent(t, local.Path, "a much longer remote edit")
	})

	t.Run("tie favors local", func(t *testing.T) {
		r := newTestResolver(t, model.PolicyLargest)
		dir := t.TempDir()
		local := writeFile(t, filepath.Join(dir, "local.txt"), "same length", time.Unix(300, 0))
		remote := writeFile(t, filepath.Join(dir, "remote.txt"), "same-length", time.Unix(400, 0))

		resolved, err := r.Resolve(local, remote)
		require.NoError(t, err)
		assert.True(t, resolved)
		assertContent(t, remote.Path, "same length")
	})
}

func TestResolveFailureLeavesState(t *testing.T) {
	r := newTestResolver(t, model.PolicyOverwrite)
	dir := t.TempDir()
	remote := writeFile(t, filepath.Join(dir, "remote.txt"), "remote edit", time.Unix(300, 0))
	local := meta(filepath.Join(dir, "gone.txt"), 5, 400, "deadbeef")

	resolved, err := r.Resolve(local, remote)
	require.Error(t, err)
	assert.False(t, resolved)

	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, local.Path, resErr.Path)

	assertContent(t, remote.Path, "remote edit")

	rec, err := r.store.Get(local.Path)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestResolveUnknownPolicy(t *testing.T) {
	r := newTestResolver(t, model.ConflictPolicy("merge"))

	_, err := r.Resolve(meta("/a", 1, 1, "A"), meta("/b", 1, 1, "B"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown conflict policy")
}

func TestDefaultPolicy(t *testing.T) {
	r := newTestResolver(t, "")
	assert.Equal(t, model.PolicySkip, r.Policy())
}
