package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/irjeyaraj/UGNasSync/internal/model"
	"github.com/irjeyaraj/UGNasSync/internal/repository"
)

var historyN int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View recent sync runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		runs, err := fetchHistory(historyN)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("no runs recorded yet")
			return nil
		}

		for _, run := range runs {
			glyph := "✓"
			switch run.Status {
			case model.RunFailed:
				glyph = "✗"
			case model.RunWarning:
				glyph = "!"
			}

			detail := fmt.Sprintf("%d files, %s in %s",
				run.Files,
				humanize.Bytes(uint64(run.Bytes)),
				time.Duration(run.DurationMS)*time.Millisecond)
			if run.Status == model.RunFailed {
				detail = run.ErrMsg
			}

			fmt.Printf("%s [%s] %-16s %-5s %s\n",
				glyph,
				run.StartedAt.Format("2006-01-02 15:04:05"),
				run.Profile,
				run.Trigger,
				detail)
		}

		return nil
	},
}

// fetchHistory asks the running daemon first and falls back to reading
// the history store directly when no daemon is up.
func fetchHistory(n int) ([]model.RunRecord, error) {
	resp, err := http.Get(fmt.Sprintf("%s?n=%d", daemonURL("/history"), n))
	if err != nil {
		repo, repoErr := repository.OpenRuns()
		if repoErr != nil {
			return nil, fmt.Errorf("daemon not running: %w", err)
		}
		return repo.Recent(n)
	}

	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("daemon returned %s", resp.Status)
	}

	var runs []model.RunRecord
	if err := json.NewDecoder(resp.Body).Decode(&runs); err != nil {
		return nil, fmt.Errorf("failed to decode history response: %w", err)
	}

	return runs, nil
}

func init() {
	historyCmd.Flags().IntVar(&historyN, "n", 20, "Number of runs to show")
	rootCmd.AddCommand(historyCmd)
}
