package autostart

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/irjeyaraj/UGNasSync/internal/util"
)

const serviceName = "ugnassync.service"

const serviceTemplate = `[Unit]
Description=UGNasSync File Tree Synchronization Daemon
After=network.target

[Service]
ExecStart={{.ExecPath}} watch
Restart=on-failure
RestartSec=5

[Install]
WantedBy=default.target
`

// LinuxAutoStarter manages a per-user systemd service.
type LinuxAutoStarter struct {
	runner util.CommandRunner
}

func (l *LinuxAutoStarter) servicePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, ".config", "systemd", "user", serviceName), nil
}

func (l *LinuxAutoStarter) Install(ctx context.Context, execPath string) error {
	path, err := l.servicePath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create systemd user directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create service file: %w", err)
	}

	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	tmpl := template.Must(template.New("service").Parse(serviceTemplate))
	if err := tmpl.Execute(f, map[string]string{"ExecPath": execPath}); err != nil {
		return fmt.Errorf("failed to write service file: %w", err)
	}

	cmds := [][]string{
		{"systemctl", "--user", "daemon-reload"},
		{"systemctl", "--user", "enable", serviceName},
		{"systemctl", "--user", "start", serviceName},
	}

	for _, args := range cmds {
		if stdout, stderr, err := l.runner.Run(ctx, args[0], args[1:]...); err != nil {
			return fmt.Errorf("failed to run %v: %w\n%s%s", args, err, stdout, stderr)
		}
	}

	return nil
}

func (l *LinuxAutoStarter) Uninstall(ctx context.Context) error {
	cmds := [][]string{
		{"systemctl", "--user", "stop", serviceName},
		{"systemctl", "--user", "disable", serviceName},
	}

	for _, args := range cmds {
		_, _, _ = l.runner.Run(ctx, args[0], args[1:]...)
	}

	path, err := l.servicePath()
	if err != nil {
		return err
	}

	return util.RemoveIfExists(path)
}

func (l *LinuxAutoStarter) IsInstalled(_ context.Context) (bool, error) {
	path, err := l.servicePath()
	if err != nil {
		return false, err
	}

	_, err = os.Stat(path)
	return err == nil, nil
}
