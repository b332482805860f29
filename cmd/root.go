package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/irjeyaraj/UGNasSync/internal/config"
	"github.com/irjeyaraj/UGNasSync/internal/logger"
	"github.com/irjeyaraj/UGNasSync/internal/model"
)

var (
	cfgFile string
	verbose bool

	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ugnassync",
	Short: "Keep local file trees in sync with a NAS",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}

		log, err = logger.New(cfg.Logging, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}

		for _, p := range cfg.Profiles {
			if p.Mode == model.ModeTwoWay && p.ConflictPolicy == "" {
				log.Warn("two-way profile has no conflict_resolution; defaulting to skip",
					zap.String("profile", p.Name))
			}
		}

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func daemonURL(path string) string {
	return fmt.Sprintf("http://localhost:%d%s", cfg.Daemon.Port, path)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.toml", "Path to the configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}
