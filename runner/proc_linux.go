//go:build linux

package runner

import (
	"os/exec"
	"syscall"
)

// setPlatformSpecificAttrs configures process attributes specifically for Linux systems.
// Setpgid puts the child in its own process group so a deadline kill
// reaches everything it spawned. Pdeathsig ensures the kernel reaps the
// child if the server itself exits.
func setPlatformSpecificAttrs(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid:   true,
		Pdeathsig: syscall.SIGKILL,
	}
}

// killProcessTree signals the whole process group.
func killProcessTree(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}
