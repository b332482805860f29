package cmd

import (
	"context"

	"github.com/irjeyaraj/UGNasSync/internal/config"
	"github.com/irjeyaraj/UGNasSync/internal/mount"
	"github.com/irjeyaraj/UGNasSync/internal/util"
)

func smbMountNeeded(profiles []config.SyncProfile) bool {
	if !cfg.NAS.SMB.Enabled {
		return false
	}

	for _, p := range profiles {
		if p.UseSMBMount {
			return true
		}
	}
	return false
}

// mountSMB mounts the configured share when any of the profiles needs
// it. The returned release func unmounts or, when auto unmount is off,
// only scrubs the credentials file.
func mountSMB(ctx context.Context, profiles []config.SyncProfile, runner util.CommandRunner) (func(), error) {
	if !smbMountNeeded(profiles) {
		return func() {}, nil
	}

	smb := mount.NewSMBMount(cfg.NAS.SMB, runner, log)
	if err := smb.Mount(ctx); err != nil {
		return nil, err
	}

	release := func() {
		if smb.ShouldAutoUnmount() {
			_ = smb.Unmount(context.Background())
		} else {
			smb.CleanupCredentials()
		}
	}
	return release, nil
}
