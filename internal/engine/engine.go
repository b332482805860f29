package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/irjeyaraj/UGNasSync/internal/config"
	"github.com/irjeyaraj/UGNasSync/internal/model"
	"github.com/irjeyaraj/UGNasSync/internal/store"
	"github.com/irjeyaraj/UGNasSync/internal/util"
)

// TransferError reports a failed transfer for one profile. It is fatal
// to that profile's current run only; other profiles in the same batch
// proceed normally.
type TransferError struct {
	Profile string
	Stderr  string
	Err     error
}

func (e *TransferError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("transfer failed for profile %s: %v: %s", e.Profile, e.Err, e.Stderr)
	}
	return fmt.Sprintf("transfer failed for profile %s: %v", e.Profile, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// Engine drives sync runs for profiles. The transfer itself is
// delegated to rsync; the engine builds the invocation, reconciles
// conflicts beforehand for two-way profiles and parses the statistics
// afterwards.
type Engine struct {
	nas    config.NASConfig
	store  *store.Store
	runner util.CommandRunner
	logger *zap.Logger
}

// New builds an engine. A nil store is allowed and degrades conflict
// detection to best-effort.
func New(nas config.NASConfig, st *store.Store, runner util.CommandRunner, logger *zap.Logger) *Engine {
	return &Engine{nas: nas, store: st, runner: runner, logger: logger}
}

// SyncProfile runs one sync pass for the profile. The returned stats
// are populated as far as the run got, even when an error is returned.
func (e *Engine) SyncProfile(ctx context.Context, profile config.SyncProfile, dryRun bool) (model.SyncStats, error) {
	e.logger.Info("starting sync profile",
		zap.String("profile", profile.Name),
		zap.String("mode", string(profile.Mode)),
		zap.Bool("dry_run", dryRun))

	started := time.Now()

	var stats model.SyncStats

	if profile.Mode == model.ModeTwoWay {
		e.reconcile(profile, &stats, dryRun)
	}

	args := e.rsyncArgs(profile, dryRun)
	e.logger.Debug("executing rsync", zap.Strings("args", args))

	stdout, stderr, err := e.runner.Run(ctx, "rsync", args...)
	stats.Duration = time.Since(started)

	if err != nil {
		msg := strings.TrimSpace(string(stderr))
		e.logger.Error("rsync failed",
			zap.String("profile", profile.Name),
			zap.String("stderr", msg),
			zap.Error(err))

		return stats, &TransferError{
			Profile: profile.Name,
			Stderr:  msg,
			Err:     fmt.Errorf("rsync failed: %w", err),
		}
	}

	parseStats(string(stdout), &stats)

	e.logger.Info("sync finished",
		zap.String("profile", profile.Name),
		zap.Int64("files", stats.FilesTransferred),
		zap.String("transferred", humanize.Bytes(uint64(stats.BytesTransferred))),
		zap.Duration("duration", stats.Duration))

	if dryRun {
		e.logger.Info("dry run completed; no files were transferred",
			zap.String("profile", profile.Name))
	}

	return stats, nil
}
