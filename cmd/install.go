package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/irjeyaraj/UGNasSync/internal/autostart"
	"github.com/irjeyaraj/UGNasSync/internal/util"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Register the watch daemon to start at login",
	RunE: func(cmd *cobra.Command, args []string) error {
		execPath, err := os.Executable()
		if err != nil {
			return fmt.Errorf("failed to get executable path: %w", err)
		}

		as := autostart.New(util.NewExecRunner())
		if err := as.Install(cmd.Context(), execPath); err != nil {
			return err
		}

		fmt.Println("ugnassync daemon registered for autostart")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
