package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List configured sync profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(cfg.Profiles) == 0 {
			fmt.Println("no profiles configured")
			return nil
		}

		fmt.Printf("%-20s %-12s %-10s %-8s %-6s %-30s %s\n",
			"NAME", "MODE", "POLICY", "ENABLED", "WATCH", "LOCAL", "REMOTE")

		for _, p := range cfg.Profiles {
			policy := string(p.ConflictPolicy)
			if policy == "" {
				policy = "-"
			}

			fmt.Printf("%-20s %-12s %-10s %-8s %-6s %-30s %s\n",
				p.Name, p.Mode, policy, yesNo(p.Enabled), yesNo(p.WatchMode),
				p.LocalPath, p.RemotePath)
		}

		return nil
	},
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}
