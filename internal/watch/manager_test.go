package watch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/irjeyaraj/UGNasSync/internal/config"
	"github.com/irjeyaraj/UGNasSync/internal/engine"
	"github.com/irjeyaraj/UGNasSync/internal/model"
	"github.com/irjeyaraj/UGNasSync/internal/util"
)

const watchStatsOutput = `
Number of files: 12 (reg: 10, dir: 2)
Number of regular files transferred: 3
Total file size: 10,240 bytes
Total transferred file size: 1,024 bytes
`

func watchTestProfile(t *testing.T, name string) config.SyncProfile {
	t.Helper()

	return config.SyncProfile{
		Name:            name,
		LocalPath:       t.TempDir(),
		RemotePath:      "/volume1/" + name,
		Mode:            model.ModeOneWay,
		WatchMode:       true,
		DebounceSeconds: 5,
	}
}

func TestStartWithNoProfiles(t *testing.T) {
	m := NewManager(nil, nil, zap.NewNop())

	require.NoError(t, m.Start(context.Background(), nil))
	assert.Empty(t, m.Snapshots())
}

func TestStartRunsInitialSyncAndWatches(t *testing.T) {
	runner := util.NewMockRunner().Expect("rsync", []byte(watchStatsOutput), nil, nil)
	eng := engine.New(config.NASConfig{Host: "nas.local", Username: "admin", Port: 22}, nil, runner, zap.NewNop())
	m := NewManager(eng, nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- m.Start(ctx, []config.SyncProfile{watchTestProfile(t, "photos")})
	}()

	require.Eventually(t, func() bool {
		snaps := m.Snapshots()
		return len(snaps) == 1 && snaps[0].Watching && snaps[0].LastStatus == string(model.RunSuccess)
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 1, runner.CallCount("rsync"))

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("manager did not stop after context cancellation")
	}

	snaps := m.Snapshots()
	require.Len(t, snaps, 1)
	assert.Equal(t, "photos", snaps[0].Profile)
	assert.False(t, snaps[0].Watching)
	assert.Equal(t, 1, snaps[0].Dispatches)
	assert.Zero(t, snaps[0].Failures)
	assert.False(t, snaps[0].LastSync.IsZero())
}

func TestFailedSyncCountsAsFailure(t *testing.T) {
	runner := util.NewMockRunner().
		Expect("rsync", nil, []byte("rsync: connection refused"), errors.New("exit status 10"))
	eng := engine.New(config.NASConfig{Host: "nas.local", Username: "admin", Port: 22}, nil, runner, zap.NewNop())
	m := NewManager(eng, nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- m.Start(ctx, []config.SyncProfile{watchTestProfile(t, "photos")})
	}()

	require.Eventually(t, func() bool {
		snaps := m.Snapshots()
		return len(snaps) == 1 && snaps[0].LastStatus == string(model.RunFailed)
	}, 2*time.Second, 10*time.Millisecond)

	snaps := m.Snapshots()
	assert.Equal(t, 1, snaps[0].Dispatches)
	assert.Equal(t, 1, snaps[0].Failures)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("manager did not stop after context cancellation")
	}
}

func TestSnapshotsOrderedByProfile(t *testing.T) {
	runner := util.NewMockRunner().Expect("rsync", []byte(watchStatsOutput), nil, nil)
	eng := engine.New(config.NASConfig{Host: "nas.local", Username: "admin", Port: 22}, nil, runner, zap.NewNop())
	m := NewManager(eng, nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	profiles := []config.SyncProfile{
		watchTestProfile(t, "videos"),
		watchTestProfile(t, "documents"),
	}

	done := make(chan error, 1)
	go func() {
		done <- m.Start(ctx, profiles)
	}()

	require.Eventually(t, func() bool {
		return len(m.Snapshots()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	snaps := m.Snapshots()
	assert.Equal(t, "documents", snaps[0].Profile)
	assert.Equal(t, "videos", snaps[1].Profile)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("manager did not stop after context cancellation")
	}
}
