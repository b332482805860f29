package engine

import (
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/irjeyaraj/UGNasSync/internal/config"
	"github.com/irjeyaraj/UGNasSync/internal/conflict"
	"github.com/irjeyaraj/UGNasSync/internal/fingerprint"
	"github.com/irjeyaraj/UGNasSync/internal/model"
)

// reconcile walks the local tree of a two-way profile and reconciles
// files that diverged on both sides. Full bidirectional propagation is
// not implemented; the transfer that follows remains one-way.
func (e *Engine) reconcile(profile config.SyncProfile, stats *model.SyncStats, dryRun bool) {
	policy := profile.ConflictPolicy
	if policy == "" {
		policy = model.PolicySkip
	}

	e.logger.Info("two-way sync with conflict resolution",
		zap.String("profile", profile.Name),
		zap.String("policy", string(policy)))
	e.logger.Warn("two-way sync is partially implemented; transfer remains one-way",
		zap.String("profile", profile.Name))

	if e.store == nil {
		e.logger.Warn("sync state store unavailable; skipping conflict pass",
			zap.String("profile", profile.Name))
		return
	}

	remoteRoot := e.remoteRootDir(profile)
	if remoteRoot == "" {
		e.logger.Info("remote tree not reachable locally; skipping conflict pass",
			zap.String("profile", profile.Name))
		return
	}

	resolver := conflict.NewResolver(policy, e.store, e.logger)

	err := filepath.WalkDir(profile.LocalPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			e.logger.Warn("failed to scan path", zap.String("path", path), zap.Error(err))
			return nil
		}

		if profile.Excluded(path) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		e.reconcileFile(resolver, profile, remoteRoot, path, stats, dryRun)
		return nil
	})
	if err != nil {
		e.logger.Warn("conflict scan aborted",
			zap.String("profile", profile.Name),
			zap.Error(err))
	}
}

func (e *Engine) reconcileFile(resolver *conflict.Resolver, profile config.SyncProfile, remoteRoot, localPath string, stats *model.SyncStats, dryRun bool) {
	rel, err := filepath.Rel(profile.LocalPath, localPath)
	if err != nil {
		return
	}
	remotePath := filepath.Join(remoteRoot, rel)

	if _, err := os.Stat(remotePath); err != nil {
		// nothing on the remote side; the transfer handles new files
		return
	}

	localMeta, err := fingerprint.Probe(localPath)
	if err != nil {
		e.logger.Warn("failed to probe local file", zap.String("path", localPath), zap.Error(err))
		return
	}

	remoteMeta, err := fingerprint.Probe(remotePath)
	if err != nil {
		e.logger.Warn("failed to probe remote file", zap.String("path", remotePath), zap.Error(err))
		return
	}

	rec, err := e.store.Get(localPath)
	if err != nil {
		e.logger.Warn("failed to load sync state", zap.String("path", localPath), zap.Error(err))
		rec = nil
	}

	if !resolver.Detect(localMeta, remoteMeta, rec) {
		return
	}

	stats.ConflictsDetected++

	if dryRun {
		e.logger.Info("conflict detected (dry run)",
			zap.String("local", localPath),
			zap.String("remote", remotePath))
		stats.ConflictsSkipped++
		return
	}

	resolved, err := resolver.Resolve(localMeta, remoteMeta)
	if err != nil {
		e.logger.Error("conflict resolution failed",
			zap.String("path", localPath),
			zap.Error(err))
		stats.ConflictsSkipped++
		return
	}

	if resolved {
		stats.ConflictsResolved++
	} else {
		stats.ConflictsSkipped++
	}
}

// remoteRootDir returns the remote tree's path as visible on the local
// filesystem, or "" when the remote side is only reachable over SSH and
// file-level reconciliation cannot run.
func (e *Engine) remoteRootDir(profile config.SyncProfile) string {
	root := profile.RemotePath
	if profile.UseSMBMount {
		root = filepath.Join(e.nas.SMB.MountPoint, profile.RemotePath)
	}

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return ""
	}

	return root
}
