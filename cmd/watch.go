package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/irjeyaraj/UGNasSync/internal/daemon"
	"github.com/irjeyaraj/UGNasSync/internal/engine"
	"github.com/irjeyaraj/UGNasSync/internal/repository"
	"github.com/irjeyaraj/UGNasSync/internal/store"
	"github.com/irjeyaraj/UGNasSync/internal/util"
	"github.com/irjeyaraj/UGNasSync/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch profile directories and sync on change",
	RunE:  runDaemon,
}

func runDaemon(cmd *cobra.Command, args []string) error {
	defer func() { _ = log.Sync() }()

	stateDir, err := util.StateDir()
	if err != nil {
		return err
	}

	lock := flock.New(filepath.Join(stateDir, "ugnassync.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire daemon lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another ugnassync daemon is already running")
	}
	defer func() { _ = lock.Unlock() }()

	profiles := cfg.WatchProfiles()
	if len(profiles) == 0 {
		log.Error("no profiles with watch_mode enabled found in config")
		return fmt.Errorf("no watch-enabled profiles configured")
	}

	runner := util.NewExecRunner()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	release, err := mountSMB(ctx, profiles, runner)
	if err != nil {
		return err
	}
	defer release()

	st, err := store.Open()
	if err != nil {
		log.Warn("conflict detection degraded", zap.Error(err))
	}

	history, err := repository.OpenRuns()
	if err != nil {
		log.Warn("run history unavailable", zap.Error(err))
	}

	eng := engine.New(cfg.NAS, st, runner, log)
	manager := watch.NewManager(eng, history, log)

	srv := daemon.NewServer(manager, history, cfg.Daemon.Port, log)
	srv.Start()

	managerDone := make(chan error, 1)
	go func() { managerDone <- manager.Start(ctx, profiles) }()

	log.Info("ugnassync daemon started",
		zap.Int("profiles", len(profiles)),
		zap.Int("port", cfg.Daemon.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	drained := false
	select {
	case sig := <-sigCh:
		log.Info("shutting down", zap.String("signal", sig.String()))
	case <-srv.StopCh():
		log.Info("stop requested via API")
	case err := <-managerDone:
		drained = true
		if err != nil {
			log.Error("watch manager failed", zap.Error(err))
		} else {
			log.Info("all watch sessions ended")
		}
	}

	cancel()
	if !drained {
		<-managerDone
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return srv.Stop(shutdownCtx)
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
