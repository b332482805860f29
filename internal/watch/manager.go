package watch

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/irjeyaraj/UGNasSync/internal/config"
	"github.com/irjeyaraj/UGNasSync/internal/engine"
	"github.com/irjeyaraj/UGNasSync/internal/model"
	"github.com/irjeyaraj/UGNasSync/internal/repository"
)

// Manager runs one watch session per profile. Sessions are peers: a
// lost watcher or a failing sync ends or degrades only its own profile.
type Manager struct {
	engine  *engine.Engine
	history *repository.Runs
	logger  *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*session
}

type session struct {
	deb        *Debouncer
	watching   bool
	dispatches int
	failures   int
	lastSync   time.Time
	lastStatus model.RunStatus
}

// SessionSnapshot is a point-in-time view of one profile's watch
// session, served by the daemon status endpoint.
type SessionSnapshot struct {
	Profile        string    `json:"profile"`
	Watching       bool      `json:"watching"`
	PendingChanges bool      `json:"pending_changes"`
	Dispatches     int       `json:"dispatches"`
	Failures       int       `json:"failures"`
	LastSync       time.Time `json:"last_sync"`
	LastStatus     string    `json:"last_status,omitempty"`
}

// NewManager builds a watch manager. history may be nil, in which case
// runs are not recorded.
func NewManager(eng *engine.Engine, history *repository.Runs, logger *zap.Logger) *Manager {
	return &Manager{
		engine:   eng,
		history:  history,
		logger:   logger,
		sessions: make(map[string]*session),
	}
}

// Start performs an initial sync for every profile, then watches them
// until ctx is canceled or every session has ended.
func (m *Manager) Start(ctx context.Context, profiles []config.SyncProfile) error {
	if len(profiles) == 0 {
		m.logger.Warn("no profiles with watch mode enabled")
		return nil
	}

	m.logger.Info("starting watch mode", zap.Int("profiles", len(profiles)))

	for _, profile := range profiles {
		m.logger.Info("performing initial sync", zap.String("profile", profile.Name))
		m.runSync(ctx, profile)
	}

	eg, egCtx := errgroup.WithContext(ctx)

	for _, profile := range profiles {
		profile := profile
		eg.Go(func() error {
			m.watchProfile(egCtx, profile)
			return nil
		})
	}

	return eg.Wait()
}

// Snapshots returns the current state of all sessions, ordered by
// profile name.
func (m *Manager) Snapshots() []SessionSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snaps := make([]SessionSnapshot, 0, len(m.sessions))
	for name, s := range m.sessions {
		snaps = append(snaps, SessionSnapshot{
			Profile:        name,
			Watching:       s.watching,
			PendingChanges: s.deb != nil && s.deb.Pending(),
			Dispatches:     s.dispatches,
			Failures:       s.failures,
			LastSync:       s.lastSync,
			LastStatus:     string(s.lastStatus),
		})
	}

	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Profile < snaps[j].Profile })
	return snaps
}

// watchProfile runs one profile's session until the context is canceled
// or the event source disconnects. Failures end only this session.
func (m *Manager) watchProfile(ctx context.Context, profile config.SyncProfile) {
	m.logger.Info("watch mode enabled",
		zap.String("profile", profile.Name),
		zap.String("path", profile.LocalPath))

	w, err := NewWatcher(m.logger)
	if err != nil {
		m.logger.Error("failed to create file watcher",
			zap.String("profile", profile.Name),
			zap.Error(err))
		return
	}
	defer w.Stop()

	if err := w.Watch(profile.LocalPath); err != nil {
		m.logger.Error("failed to watch directory",
			zap.String("profile", profile.Name),
			zap.String("path", profile.LocalPath),
			zap.Error(err))
		return
	}

	deb := NewDebouncer(profile.Debounce(), profile.Excluded)
	m.setSession(profile.Name, deb)
	defer m.endSession(profile.Name)

	if err := m.runSession(ctx, profile, deb, w.Events()); err != nil {
		m.logger.Warn("watch session ended",
			zap.String("profile", profile.Name),
			zap.Error(err))
	}
}

// runSession is the debounce loop: it drains change notifications and,
// once per second, checks whether a sync is due. Dispatches run inline,
// so within one profile they are strictly serialized; events arriving
// during a dispatch accumulate in the watcher's buffer.
func (m *Manager) runSession(ctx context.Context, profile config.SyncProfile, deb *Debouncer, events <-chan model.FileEvent) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("watch session stopping", zap.String("profile", profile.Name))
			return nil

		case event, ok := <-events:
			if !ok {
				return ErrSourceLost
			}

			if deb.Observe(event.Path) {
				m.logger.Debug("file change detected",
					zap.String("profile", profile.Name),
					zap.String("type", string(event.Type)),
					zap.String("path", event.Path))
			}

		case <-ticker.C:
			if deb.Due(time.Now()) {
				m.logger.Info("debounce period elapsed, starting sync",
					zap.String("profile", profile.Name))
				m.runSync(ctx, profile)
			}
		}
	}
}

func (m *Manager) runSync(ctx context.Context, profile config.SyncProfile) {
	started := time.Now()

	stats, err := m.engine.SyncProfile(ctx, profile, false)
	if err != nil {
		m.logger.Error("sync failed", zap.String("profile", profile.Name), zap.Error(err))
	} else {
		m.logger.Info("watch sync completed",
			zap.String("profile", profile.Name),
			zap.Int64("files", stats.FilesTransferred),
			zap.String("transferred", humanize.Bytes(uint64(stats.BytesTransferred))))
	}

	rec := model.NewRunRecord(profile.Name, profile.Mode, model.TriggerWatch, stats, started, err)
	m.recordRun(profile.Name, rec)
}

func (m *Manager) recordRun(name string, rec model.RunRecord) {
	m.mu.Lock()
	s, ok := m.sessions[name]
	if !ok {
		s = &session{}
		m.sessions[name] = s
	}
	s.dispatches++
	if rec.Status == model.RunFailed {
		s.failures++
	}
	s.lastSync = rec.StartedAt
	s.lastStatus = rec.Status
	m.mu.Unlock()

	if m.history == nil {
		return
	}

	if err := m.history.Save(rec); err != nil {
		m.logger.Warn("failed to record run history",
			zap.String("profile", name),
			zap.Error(err))
	}
}

func (m *Manager) setSession(name string, deb *Debouncer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[name]; ok {
		s.deb = deb
		s.watching = true
		return
	}

	m.sessions[name] = &session{deb: deb, watching: true}
}

func (m *Manager) endSession(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[name]; ok {
		s.watching = false
	}
}
