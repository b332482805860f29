package mount

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/irjeyaraj/UGNasSync/internal/config"
	"github.com/irjeyaraj/UGNasSync/internal/util"
)

// SMBMount mounts a CIFS share through the system mount command. The
// credentials handed to mount live in a transient 0600 file that is
// removed on every exit path; callers defer CleanupCredentials at the
// acquisition site so a failure between Mount and Unmount cannot leave
// it behind.
type SMBMount struct {
	cfg       config.SMBConfig
	runner    util.CommandRunner
	logger    *zap.Logger
	credsFile string
	mounted   bool
}

func NewSMBMount(cfg config.SMBConfig, runner util.CommandRunner, logger *zap.Logger) *SMBMount {
	return &SMBMount{cfg: cfg, runner: runner, logger: logger}
}

// Mount brings the share up at the configured mount point. Mounting is
// skipped when something is already mounted there.
func (m *SMBMount) Mount(ctx context.Context) error {
	m.logger.Info("SMB mount enabled", zap.String("share", m.cfg.SharePath))
	m.logger.Info("checking mount status", zap.String("mount_point", m.cfg.MountPoint))

	if m.active(ctx) {
		m.logger.Info("mount point already mounted", zap.String("mount_point", m.cfg.MountPoint))
		m.mounted = true
		return nil
	}

	if _, err := os.Stat(m.cfg.MountPoint); os.IsNotExist(err) {
		m.logger.Info("creating mount point", zap.String("mount_point", m.cfg.MountPoint))
		if err := os.MkdirAll(m.cfg.MountPoint, 0o755); err != nil {
			return fmt.Errorf("failed to create mount point: %w", err)
		}
	}

	credsFile, err := m.writeCredentials()
	if err != nil {
		return err
	}

	args := []string{"-t", "cifs", m.cfg.SharePath, m.cfg.MountPoint, "-o", "credentials=" + credsFile}
	if m.cfg.MountOptions != "" {
		args = append(args, "-o", m.cfg.MountOptions)
	}

	m.logger.Info("mounting SMB share",
		zap.String("share", m.cfg.SharePath),
		zap.String("mount_point", m.cfg.MountPoint))

	if m.cfg.MountTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(m.cfg.MountTimeout)*time.Second)
		defer cancel()
	}

	_, stderr, err := m.runner.Run(ctx, "mount", args...)
	if err != nil {
		m.CleanupCredentials()
		return m.classifyMountError(string(stderr), err)
	}

	m.logger.Info("SMB share mounted successfully")
	m.mounted = true

	return nil
}

// Unmount takes the share down, falling back to a lazy unmount when the
// mount point is busy. Unmount problems are logged rather than
// propagated; the credentials file is removed either way.
func (m *SMBMount) Unmount(ctx context.Context) error {
	if !m.mounted {
		return nil
	}

	m.logger.Info("unmounting SMB share", zap.String("mount_point", m.cfg.MountPoint))

	if _, stderr, err := m.runner.Run(ctx, "umount", m.cfg.MountPoint); err != nil {
		m.logger.Warn("graceful unmount failed",
			zap.String("stderr", strings.TrimSpace(string(stderr))),
			zap.Error(err))

		m.logger.Info("attempting lazy unmount")
		if _, stderr, err := m.runner.Run(ctx, "umount", "-l", m.cfg.MountPoint); err != nil {
			m.logger.Error("lazy unmount failed",
				zap.String("stderr", strings.TrimSpace(string(stderr))),
				zap.Error(err))
			m.logger.Warn("failed to unmount SMB share; manual cleanup may be needed")
		} else {
			m.logger.Info("lazy unmount successful")
		}
	} else {
		m.logger.Info("SMB share unmounted successfully")
	}

	m.CleanupCredentials()
	m.mounted = false

	return nil
}

// CleanupCredentials removes the transient credentials file. Safe to
// call repeatedly and on instances that never mounted.
func (m *SMBMount) CleanupCredentials() {
	if m.credsFile == "" {
		return
	}

	if err := util.RemoveIfExists(m.credsFile); err != nil {
		m.logger.Warn("failed to remove credentials file",
			zap.String("path", m.credsFile),
			zap.Error(err))
	} else {
		m.logger.Debug("removed credentials file", zap.String("path", m.credsFile))
	}

	m.credsFile = ""
}

func (m *SMBMount) MountPoint() string {
	return m.cfg.MountPoint
}

func (m *SMBMount) ShouldAutoUnmount() bool {
	return m.cfg.AutoUnmount
}

func (m *SMBMount) IsMounted() bool {
	return m.mounted
}

// active reports whether something is already mounted at the mount
// point. Failure to verify counts as not mounted.
func (m *SMBMount) active(ctx context.Context) bool {
	_, _, err := m.runner.Run(ctx, "mountpoint", "-q", m.cfg.MountPoint)
	return err == nil
}

func (m *SMBMount) writeCredentials() (string, error) {
	dir, err := util.StateDir()
	if err != nil {
		return "", err
	}

	credsDir := filepath.Join(dir, "smb_credentials")
	if err := os.MkdirAll(credsDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create credentials directory: %w", err)
	}

	path := filepath.Join(credsDir, fmt.Sprintf("smb_creds_%d.tmp", os.Getpid()))

	var b strings.Builder
	fmt.Fprintf(&b, "username=%s\n", m.cfg.Username)
	fmt.Fprintf(&b, "password=%s\n", m.cfg.Password)
	if m.cfg.Domain != "" {
		fmt.Fprintf(&b, "domain=%s\n", m.cfg.Domain)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return "", fmt.Errorf("failed to write credentials file: %w", err)
	}

	m.logger.Debug("created credentials file", zap.String("path", path))
	m.credsFile = path

	return path, nil
}

// classifyMountError turns raw mount stderr into an actionable message.
func (m *SMBMount) classifyMountError(stderr string, err error) error {
	msg := strings.TrimSpace(stderr)
	m.logger.Error("SMB mount failed", zap.String("stderr", msg), zap.Error(err))

	switch {
	case strings.Contains(stderr, "Permission denied") || strings.Contains(stderr, "permission denied"):
		return fmt.Errorf("permission denied; try running with sudo or adding the user to the required groups: %s", msg)
	case strings.Contains(stderr, "Host is down") || strings.Contains(stderr, "Network is unreachable"):
		return fmt.Errorf("network unreachable for %s: %s", m.cfg.SharePath, msg)
	case strings.Contains(stderr, "mount error(13)"):
		return fmt.Errorf("invalid credentials or authentication failed: %s", msg)
	default:
		return fmt.Errorf("mount failed: %w: %s", err, msg)
	}
}
