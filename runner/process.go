package runner

import (
	"bytes"
	"context"
	"os/exec"
)

// outcome is the raw result of one child process, both output streams
// fully accumulated.
type outcome struct {
	stdout    string
	stderr    string
	exitCode  int
	timedOut  bool
	launchErr error
}

// runCommand starts argv inside dir, accumulates stdout and stderr
// until the process exits and both streams close, and kills the whole
// process group when ctx expires. Expiry must never orphan compiler or
// runtime subprocesses.
func runCommand(ctx context.Context, dir string, argv []string, started func(pid int)) outcome {
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = dir
	setPlatformSpecificAttrs(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return outcome{launchErr: err, exitCode: -1}
	}
	if started != nil {
		started(cmd.Process.Pid)
	}

	waitErr := make(chan error, 1)
	go func() { waitErr <- cmd.Wait() }()

	select {
	case err := <-waitErr:
		code := 0
		if err != nil {
			code = cmd.ProcessState.ExitCode()
			if code == 0 {
				// Wait failed for a reason other than a non-zero exit
				code = -1
			}
		}
		return outcome{stdout: stdout.String(), stderr: stderr.String(), exitCode: code}
	case <-ctx.Done():
		killProcessTree(cmd)
		// Wait must still be drained so the streams are closed and the
		// child is reaped.
		<-waitErr
		return outcome{stdout: stdout.String(), stderr: stderr.String(), exitCode: -1, timedOut: true}
	}
}
