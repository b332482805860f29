package engine

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/irjeyaraj/UGNasSync/internal/config"
	"github.com/irjeyaraj/UGNasSync/internal/model"
)

// rsyncArgs builds the rsync invocation for one profile. Flag order is
// stable: common flags, exclusions, mode flags, transport, then paths.
func (e *Engine) rsyncArgs(profile config.SyncProfile, dryRun bool) []string {
	args := []string{"-az", "--stats", "--human-readable"}

	if dryRun {
		args = append(args, "--dry-run")
	}

	args = append(args, "-v")

	for _, pattern := range profile.Exclude {
		args = append(args, "--exclude="+pattern)
	}

	switch profile.Mode {
	case model.ModeMirror:
		args = append(args, "--delete")
	case model.ModeIncremental:
		args = append(args, "--update")
	case model.ModeBackup:
		args = append(args, "--backup", "--backup-dir=.backup")
	case model.ModeOneWay, model.ModeTwoWay:
		// plain transfer; two-way reconciliation runs beforehand
	}

	if profile.UseSMBMount {
		return append(args,
			profile.LocalPath,
			filepath.Join(e.nas.SMB.MountPoint, profile.RemotePath))
	}

	ssh := fmt.Sprintf("ssh -p %d", e.nas.Port)
	if e.nas.KeyPath != "" {
		ssh = fmt.Sprintf("ssh -p %d -i %s", e.nas.Port, e.nas.KeyPath)
	} else {
		e.logger.Warn("using password authentication; consider configuring an SSH key")
	}

	return append(args,
		"-e", ssh,
		profile.LocalPath,
		fmt.Sprintf("%s@%s:%s", e.nas.Username, e.nas.Host, profile.RemotePath))
}

// parseStats extracts transfer counters from rsync --stats output.
// Values that fail to parse are left at zero.
func parseStats(output string, stats *model.SyncStats) {
	for _, line := range strings.Split(output, "\n") {
		switch {
		case strings.Contains(line, "Number of regular files transferred:"):
			stats.FilesTransferred = parseStatValue(line, false)
		case strings.Contains(line, "Total transferred file size:"):
			stats.BytesTransferred = parseStatValue(line, true)
		}
	}
}

func parseStatValue(line string, stripCommas bool) int64 {
	_, rest, ok := strings.Cut(line, ":")
	if !ok {
		return 0
	}

	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return 0
	}

	value := fields[0]
	if stripCommas {
		value = strings.ReplaceAll(value, ",", "")
	}

	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}

	return n
}
