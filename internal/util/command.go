package util

import (
	"bytes"
	"context"
	"os/exec"
)

// CommandRunner executes external commands. The mount and transfer
// collaborators go through this seam so tests can substitute canned
// output for rsync/mount/umount.
type CommandRunner interface {
	// Run executes a command and returns stdout and stderr separately.
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner implements CommandRunner on top of os/exec.
type ExecRunner struct{}

func NewExecRunner() ExecRunner {
	return ExecRunner{}
}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}
