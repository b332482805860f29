package cmd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/irjeyaraj/UGNasSync/internal/config"
	"github.com/irjeyaraj/UGNasSync/internal/engine"
	"github.com/irjeyaraj/UGNasSync/internal/model"
	"github.com/irjeyaraj/UGNasSync/internal/repository"
	"github.com/irjeyaraj/UGNasSync/internal/store"
	"github.com/irjeyaraj/UGNasSync/internal/util"
)

var (
	syncProfile string
	syncDryRun  bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run all enabled sync profiles once",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer func() { _ = log.Sync() }()

		profiles := cfg.EnabledProfiles()
		if syncProfile != "" {
			var matched []config.SyncProfile
			for _, p := range profiles {
				if p.Name == syncProfile {
					matched = append(matched, p)
				}
			}
			profiles = matched
		}

		if len(profiles) == 0 {
			log.Error("no enabled profiles found")
			return fmt.Errorf("no profiles to sync")
		}

		log.Info("found profiles to sync", zap.Int("count", len(profiles)))

		runner := util.NewExecRunner()
		ctx := cmd.Context()

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

		for _, profile := range profiles {
			log.Info("processing profile", zap.String("profile", profile.Name))

			started := time.Now()
			stats, err := eng.SyncProfile(ctx, profile, syncDryRun)
			if err != nil {
				log.Error("failed to sync profile",
					zap.String("profile", profile.Name),
					zap.Error(err))
			} else {
				printSummary(profile.Name, stats)
			}

			if history != nil && !syncDryRun {
				rec := model.NewRunRecord(profile.Name, profile.Mode, model.TriggerBatch, stats, started, err)
				if err := history.Save(rec); err != nil {
					log.Warn("failed to record run history",
						zap.String("profile", profile.Name),
						zap.Error(err))
				}
			}
		}

		log.Info("all sync operations completed")
		return nil
	},
}

func printSummary(profile string, stats model.SyncStats) {
	fmt.Println("\nSync Summary:")
	fmt.Printf("Profile: %s\n", profile)
	fmt.Printf("Files transferred: %d\n", stats.FilesTransferred)
	fmt.Printf("Bytes transferred: %s\n", humanize.Bytes(uint64(stats.BytesTransferred)))

	if stats.ConflictsDetected > 0 {
		fmt.Printf("Conflicts detected: %d\n", stats.ConflictsDetected)
		fmt.Printf("  - Skipped: %d\n", stats.ConflictsSkipped)
		fmt.Printf("  - Resolved: %d\n", stats.ConflictsResolved)
	}

	fmt.Printf("Duration: %.2fs\n", stats.Duration.Seconds())

	if stats.Clean() {
		fmt.Println("Status: Completed successfully")
	} else {
		fmt.Println("Status: Completed with warnings")
	}
}

func init() {
	syncCmd.Flags().StringVarP(&syncProfile, "profile", "p", "", "Sync only the named profile")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Show what would be transferred without changing anything")
	rootCmd.AddCommand(syncCmd)
}
