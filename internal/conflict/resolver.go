package conflict

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/irjeyaraj/UGNasSync/internal/fingerprint"
	"github.com/irjeyaraj/UGNasSync/internal/model"
	"github.com/irjeyaraj/UGNasSync/internal/store"
	"github.com/irjeyaraj/UGNasSync/internal/util"
)

// ResolutionError reports a per-file resolution failure. The sync state
// for the file is left untouched so the conflict surfaces again on the
// next run.
type ResolutionError struct {
	Path string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve conflict for %s: %v", e.Path, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Resolver detects divergent edits between a local file and its remote
// counterpart and reconciles them under a configured policy.
type Resolver struct {
	policy model.ConflictPolicy
	store  *store.Store
	logger *zap.Logger
}

func NewResolver(policy model.ConflictPolicy, st *store.Store, logger *zap.Logger) *Resolver {
	if policy == "" {
		policy = model.PolicySkip
	}

	return &Resolver{policy: policy, store: st, logger: logger}
}

// Detect reports whether local and remote have truly diverged. Without a
// record of a prior reconciliation any content difference counts as a
// conflict; with one, both sides must have changed since it was written.
// A one-sided change is ordinary sync work, not a conflict.
func (r *Resolver) Detect(local, remote model.FileMetadata, rec *model.SyncStateRecord) bool {
	if rec == nil {
		return !local.SameContent(remote)
	}

	return changedSince(local, rec) && changedSince(remote, rec)
}

// changedSince reports whether the file moved on from its recorded
// state, by a newer modification time or by different content.
func changedSince(m model.FileMetadata, rec *model.SyncStateRecord) bool {
	return m.Modified > rec.Modified || m.Hash != rec.Hash
}

// Resolve applies the configured policy to a detected conflict. It
// reports whether the conflict was resolved; false with a nil error
// means the file was skipped and left as is.
func (r *Resolver) Resolve(local, remote model.FileMetadata) (bool, error) {
	r.logger.Warn("conflict detected",
		zap.String("local", local.Path),
		zap.String("remote", remote.Path),
		zap.String("policy", string(r.policy)))

	switch r.policy {
	case model.PolicySkip:
		r.logger.Info("conflict skipped", zap.String("path", local.Path))
		return false, nil

	case model.PolicyOverwrite:
		return r.promote(local, remote, local)

	case model.PolicyKeep:
		return r.keepBoth(local, remote)

	case model.PolicyNewest:
		if remote.Modified > local.Modified {
			return r.promote(local, remote, remote)
		}
		return r.promote(local, remote, local)

	case model.PolicyLargest:
		if remote.Size > local.Size {
			return r.promote(local, remote, remote)
		}
		return r.promote(local, remote, local)

	default:
		return false, fmt.Errorf("unknown conflict policy: %s", r.policy)
	}
}

// keepBoth renames the remote copy aside before promoting the local one,
// so neither edit is lost.
func (r *Resolver) keepBoth(local, remote model.FileMetadata) (bool, error) {
	stamp := time.Now().Format("20060102-150405")
	renamed := fmt.Sprintf("%s.conflict.%s", remote.Path, stamp)

	if err := os.Rename(remote.Path, renamed); err != nil {
		return false, &ResolutionError{
			Path: local.Path,
			Err:  fmt.Errorf("failed to set aside %s: %w", remote.Path, err),
		}
	}

	r.logger.Info("conflict copy created",
		zap.String("original", remote.Path),
		zap.String("renamed", renamed))

	return r.promote(local, remote, local)
}

// promote copies the winning side over the losing one and records the
// winner's fingerprint, re-probed after the copy, as the reconciled
// state.
func (r *Resolver) promote(local, remote, winner model.FileMetadata) (bool, error) {
	loser := remote
	side := "local"
	if winner.Path == remote.Path {
		loser = local
		side = "remote"
	}

	if err := util.CopyFile(winner.Path, loser.Path); err != nil {
		return false, &ResolutionError{Path: local.Path, Err: err}
	}

	fresh, err := fingerprint.Probe(winner.Path)
	if err != nil {
		return false, &ResolutionError{
			Path: local.Path,
			Err:  fmt.Errorf("failed to fingerprint winner: %w", err),
		}
	}

	if err := r.store.Put(model.SyncStateRecord{
		Path:     fresh.Path,
		Size:     fresh.Size,
		Modified: fresh.Modified,
		Hash:     fresh.Hash,
		LastSync: time.Now().Unix(),
	}); err != nil {
		r.logger.Warn("failed to record resolution",
			zap.String("path", fresh.Path),
			zap.Error(err))
	}

	r.logger.Info("conflict resolved",
		zap.String("path", local.Path),
		zap.String("winner", side),
		zap.String("policy", string(r.policy)))

	return true, nil
}

func (r *Resolver) Policy() model.ConflictPolicy {
	return r.policy
}
