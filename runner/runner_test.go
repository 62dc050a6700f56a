package runner

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/shirou/gopsutil/process"
	"github.com/stretchr/testify/require"

	"code-lab/domain"
)

func requireBinary(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available on this host", name)
	}
}

func newTestRunner(t *testing.T, tracker chan domain.Process) *Runner {
	t.Helper()
	return New(slog.Default(), t.TempDir(), tracker)
}

func TestRunner_Python_Hello(t *testing.T) {
	requireBinary(t, "python3")
	req := require.New(t)
	r := newTestRunner(t, nil)

	result := r.Run(context.Background(), domain.ExecutionRequest{
		Code:     "print('hi')",
		Language: "python",
	})

	req.False(result.Error)
	req.Equal(0, result.ExitCode)
	req.Equal("hi\n", result.Output)
	req.Equal("python", result.Language)
}

func TestRunner_Python_SyntaxErrorIsReported(t *testing.T) {
	requireBinary(t, "python3")
	req := require.New(t)
	r := newTestRunner(t, nil)

	result := r.Run(context.Background(), domain.ExecutionRequest{
		Code:     "invalid(",
		Language: "python",
	})

	req.True(result.Error)
	req.NotEqual(0, result.ExitCode)
	req.Contains(result.Output, "SyntaxError")
}

func TestRunner_StderrAfterStdoutWithSeparator(t *testing.T) {
	requireBinary(t, "python3")
	req := require.New(t)
	r := newTestRunner(t, nil)

	result := r.Run(context.Background(), domain.ExecutionRequest{
		Code:     "import sys\nprint('to stdout')\nprint('to stderr', file=sys.stderr)",
		Language: "python",
	})

	req.False(result.Error)
	req.Contains(result.Output, "to stdout\n")
	req.Contains(result.Output, stderrSeparator)
	req.Greater(
		// stderr comes strictly after stdout
		indexOf(result.Output, "to stderr"),
		indexOf(result.Output, "to stdout"),
	)
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

func TestRunner_Timeout_KillsChildProcess(t *testing.T) {
	requireBinary(t, "python3")
	req := require.New(t)
	tracker := make(chan domain.Process, 4)
	r := newTestRunner(t, tracker)

	// The deadline is the tighter of the request context and the
	// language timeout; a short context keeps the test fast.
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	result := r.Run(ctx, domain.ExecutionRequest{
		Code:     "import time\nprint('started', flush=True)\ntime.sleep(60)",
		Language: "python",
	})

	req.True(result.Error)
	req.Equal(-1, result.ExitCode)
	req.Contains(result.Output, "timed out")
	// Output captured before expiry is preserved
	req.Contains(result.Output, "started")

	// No child process may survive the call
	proc := <-tracker
	alive, err := process.PidExists(int32(proc.PID))
	req.NoError(err)
	req.False(alive, "pid %d still in the process table", proc.PID)
}

func TestRunner_UnsupportedLanguage_NeverLaunches(t *testing.T) {
	req := require.New(t)
	tracker := make(chan domain.Process, 1)
	r := newTestRunner(t, tracker)

	result := r.Run(context.Background(), domain.ExecutionRequest{
		Code:     "whatever",
		Language: "cobol",
	})

	req.True(result.Error)
	req.Equal(-1, result.ExitCode)
	req.Contains(result.Output, "unsupported language")
	req.Equal("cobol", result.Language)
	req.Empty(tracker, "no process may be spawned for an unsupported language")
}

func TestRunner_CompileFailure_SkipsRunPhase(t *testing.T) {
	requireBinary(t, "gcc")
	req := require.New(t)
	r := newTestRunner(t, nil)

	result := r.Run(context.Background(), domain.ExecutionRequest{
		Code:     "#include <stdio.h>\nint main() { printf(\"SHOULD_NOT_RUN\"); return 0\n",
		Language: "c",
	})

	req.True(result.Error)
	req.NotEqual(0, result.ExitCode)
	req.Contains(result.Output, "error")
	req.NotContains(result.Output, "SHOULD_NOT_RUN")
}

func TestRunner_CompileAndRun_C(t *testing.T) {
	requireBinary(t, "gcc")
	req := require.New(t)
	r := newTestRunner(t, nil)

	result := r.Run(context.Background(), domain.ExecutionRequest{
		Code:     "#include <stdio.h>\nint main() { printf(\"compiled!\\n\"); return 0; }",
		Language: "c",
	})

	req.False(result.Error)
	req.Equal(0, result.ExitCode)
	req.Equal("compiled!\n", result.Output)
}

func TestRunner_FilenameWinsOverLanguage(t *testing.T) {
	requireBinary(t, "python3")
	req := require.New(t)
	r := newTestRunner(t, nil)

	// Explicit id says javascript, the filename says python
	result := r.Run(context.Background(), domain.ExecutionRequest{
		Code:     "print('from python')",
		Language: "javascript",
		Filename: "snippet.py",
	})

	req.False(result.Error)
	req.Equal("python", result.Language)
	req.Equal("from python\n", result.Output)
}

func TestRunner_CleansUpArtifactsOnEveryPath(t *testing.T) {
	requireBinary(t, "python3")
	req := require.New(t)
	workDir := t.TempDir()
	r := New(slog.Default(), workDir, nil)

	r.Run(context.Background(), domain.ExecutionRequest{Code: "print('ok')", Language: "python"})
	r.Run(context.Background(), domain.ExecutionRequest{Code: "invalid(", Language: "python"})

	entries, err := os.ReadDir(workDir)
	req.NoError(err)
	req.Empty(entries, "temporary run directories must not accumulate")
}
