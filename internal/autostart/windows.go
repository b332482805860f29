package autostart

import (
	"context"
	"fmt"

	"github.com/irjeyaraj/UGNasSync/internal/util"
)

const taskName = "UGNasSyncDaemon"

// WindowsAutoStarter manages a scheduled task that starts the daemon
// at logon.
type WindowsAutoStarter struct {
	runner util.CommandRunner
}

func (w *WindowsAutoStarter) Install(ctx context.Context, execPath string) error {
	stdout, stderr, err := w.runner.Run(ctx, "schtasks", "/create",
		"/TN", taskName,
		"/TR", fmt.Sprintf(`"%s" watch`, execPath),
		"/SC", "ONLOGON",
		"/RL", "HIGHEST",
		"/F")
	if err != nil {
		return fmt.Errorf("failed to register task: %w\n%s%s", err, stdout, stderr)
	}

	return nil
}

func (w *WindowsAutoStarter) Uninstall(ctx context.Context) error {
	stdout, stderr, err := w.runner.Run(ctx, "schtasks", "/DELETE", "/TN", taskName, "/F")
	if err != nil {
		return fmt.Errorf("failed to remove task: %w\n%s%s", err, stdout, stderr)
	}

	return nil
}

func (w *WindowsAutoStarter) IsInstalled(ctx context.Context) (bool, error) {
	if _, _, err := w.runner.Run(ctx, "schtasks", "/Query", "/TN", taskName); err != nil {
		return false, nil
	}

	return true, nil
}
