package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/irjeyaraj/UGNasSync/internal/watch"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "View daemon status",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := http.Get(daemonURL("/status"))
		if err != nil {
			return fmt.Errorf("daemon not running: %w", err)
		}

		defer func(Body io.ReadCloser) {
			_ = Body.Close()
		}(resp.Body)

		var result struct {
			Profiles []watch.SessionSnapshot `json:"profiles"`
		}

		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return fmt.Errorf("failed to decode status response: %w", err)
		}

		if len(result.Profiles) == 0 {
			fmt.Println("no active watch sessions")
			return nil
		}

		fmt.Printf("%-20s %-9s %-8s %-6s %-7s %-20s %s\n",
			"PROFILE", "WATCHING", "PENDING", "SYNCS", "FAILED", "LAST SYNC", "STATUS")

		for _, snap := range result.Profiles {
			lastSync := "-"
			if !snap.LastSync.IsZero() {
				lastSync = snap.LastSync.Format("2006-01-02 15:04:05")
			}

			status := snap.LastStatus
			if status == "" {
				status = "-"
			}

			fmt.Printf("%-20s %-9s %-8s %-6d %-7d %-20s %s\n",
				snap.Profile, yesNo(snap.Watching), yesNo(snap.PendingChanges),
				snap.Dispatches, snap.Failures, lastSync, status)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
