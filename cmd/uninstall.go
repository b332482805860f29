package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/irjeyaraj/UGNasSync/internal/autostart"
	"github.com/irjeyaraj/UGNasSync/internal/util"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Unregister the watch daemon autostart",
	RunE: func(cmd *cobra.Command, args []string) error {
		as := autostart.New(util.NewExecRunner())
		if err := as.Uninstall(cmd.Context()); err != nil {
			return err
		}

		fmt.Println("ugnassync daemon autostart removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
}
