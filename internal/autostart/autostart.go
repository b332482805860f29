package autostart

import (
	"context"
	"runtime"

	"github.com/irjeyaraj/UGNasSync/internal/util"
)

// AutoStarter registers the watch daemon with the platform's login
// startup mechanism.
type AutoStarter interface {
	Install(ctx context.Context, execPath string) error
	Uninstall(ctx context.Context) error
	IsInstalled(ctx context.Context) (bool, error)
}

func New(runner util.CommandRunner) AutoStarter {
	switch runtime.GOOS {
	case "windows":
		return &WindowsAutoStarter{runner: runner}
	case "linux":
		return &LinuxAutoStarter{runner: runner}
	default:
		return &UnsupportedAutoStarter{}
	}
}

type UnsupportedAutoStarter struct{}

func (u *UnsupportedAutoStarter) Install(_ context.Context, _ string) error {
	return nil
}

func (u *UnsupportedAutoStarter) Uninstall(_ context.Context) error {
	return nil
}

func (u *UnsupportedAutoStarter) IsInstalled(_ context.Context) (bool, error) {
	return false, nil
}
