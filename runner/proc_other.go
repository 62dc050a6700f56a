//go:build !linux

package runner

import "os/exec"

func setPlatformSpecificAttrs(cmd *exec.Cmd) {}

// killProcessTree kills the direct child only; process-group semantics
// are linux-specific.
func killProcessTree(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = cmd.Process.Kill()
}
