// Package runner drives one code execution end-to-end: materialize the
// source in a private directory, optionally compile, run, enforce a
// single deadline over the whole pipeline, and clean every artifact up
// whatever the outcome. No failure crosses this boundary as an error;
// everything becomes a normalized ExecutionResult.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"code-lab/domain"
	"code-lab/lang"
)

// stderrSeparator prefixes the run phase's stderr when non-empty, after
// the full stdout.
const stderrSeparator = "\n--- stderr ---\n"

type Runner struct {
	log     *slog.Logger
	workDir string
	tracker chan<- domain.Process
}

// New builds a runner that stages requests under workDir. The tracker
// channel, when non-nil, receives every spawned child process for the
// watchdog; tracking is best-effort and never blocks an execution.
func New(log *slog.Logger, workDir string, tracker chan<- domain.Process) *Runner {
	return &Runner{log: log, workDir: workDir, tracker: tracker}
}

func (r *Runner) Run(ctx context.Context, req domain.ExecutionRequest) domain.ExecutionResult {
	spec, err := lang.Resolve(req.Language, req.Filename)
	if err != nil {
		// Unsupported language: report immediately, never launch.
		return domain.ExecutionResult{
			Output:   fmt.Sprintf("unsupported language: %q", req.Language),
			ExitCode: -1,
			Error:    true,
			Language: req.Language,
		}
	}

	dir, src, class, err := r.materialize(spec, req.Code)
	if err != nil {
		r.log.Error("Failed to stage source for execution", "language", spec.ID, "err", err)
		return domain.ExecutionResult{
			Output:   "internal error: could not stage source",
			ExitCode: -1,
			Error:    true,
			Language: spec.ID,
		}
	}
	defer r.cleanup(dir)

	// A single deadline governs compile and run combined.
	ctx, cancel := context.WithTimeout(ctx, spec.Timeout)
	defer cancel()

	vars := map[string]string{
		"{src}":   src,
		"{dir}":   dir,
		"{bin}":   filepath.Join(dir, "program"),
		"{class}": class,
	}

	if spec.Mode == lang.CompileThenRun {
		compileOut := r.exec(ctx, dir, lang.Expand(spec.Compile, vars), spec.ID)
		switch {
		case compileOut.timedOut:
			return timedOutResult(spec, compileOut)
		case compileOut.launchErr != nil:
			return launchFailedResult(spec, compileOut.launchErr)
		case compileOut.exitCode != 0:
			// Compile failed: report the compiler's diagnostics and
			// skip the run phase entirely.
			return domain.ExecutionResult{
				Output:   combineOutput(compileOut),
				ExitCode: compileOut.exitCode,
				Error:    true,
				Language: spec.ID,
			}
		}
	}

	runOut := r.exec(ctx, dir, lang.Expand(spec.Run, vars), spec.ID)
	switch {
	case runOut.timedOut:
		return timedOutResult(spec, runOut)
	case runOut.launchErr != nil:
		return launchFailedResult(spec, runOut.launchErr)
	}
	return domain.ExecutionResult{
		Output:   combineOutput(runOut),
		ExitCode: runOut.exitCode,
		Error:    runOut.exitCode != 0,
		Language: spec.ID,
	}
}

func (r *Runner) exec(ctx context.Context, dir string, argv []string, langID string) outcome {
	return runCommand(ctx, dir, argv, func(pid int) {
		if r.tracker == nil {
			return
		}
		select {
		case r.tracker <- domain.Process{PID: domain.PID(pid), Language: langID, StartedAt: time.Now()}:
		default:
			r.log.Debug("Process tracker busy, child not tracked", "pid", pid)
		}
	})
}

// materialize writes the source into a uniquely named private
// directory. The name carries a nanosecond token plus a random suffix
// so concurrent requests can never collide. Java sources are named
// after the detected public class; a name mismatch there is a hard
// compile error that must be avoided.
func (r *Runner) materialize(spec lang.Spec, code string) (dir, src, class string, err error) {
	token := fmt.Sprintf("run_%d_%s", time.Now().UnixNano(), uuid.NewString()[:8])
	dir = filepath.Join(r.workDir, token)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return "", "", "", err
	}

	name := "main" + spec.Extensions[0]
	if spec.ID == "java" {
		class = lang.JavaEntryClass(code)
		name = class + ".java"
	}
	src = filepath.Join(dir, name)
	if err = os.WriteFile(src, []byte(code), 0o644); err != nil {
		_ = os.RemoveAll(dir)
		return "", "", "", err
	}
	return dir, src, class, nil
}

// cleanup removes every artifact of the request: source, compiled
// binary, class files. Best effort; failures are logged, never
// propagated to the caller.
func (r *Runner) cleanup(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		r.log.Warn("Failed to clean execution artifacts", "dir", dir, "err", err)
	}
}

func combineOutput(out outcome) string {
	if out.stderr == "" {
		return out.stdout
	}
	return out.stdout + stderrSeparator + out.stderr
}

func timedOutResult(spec lang.Spec, out outcome) domain.ExecutionResult {
	return domain.ExecutionResult{
		Output:   combineOutput(out) + fmt.Sprintf("\n[execution timed out after %s]", spec.Timeout),
		ExitCode: -1,
		Error:    true,
		Language: spec.ID,
	}
}

func launchFailedResult(spec lang.Spec, err error) domain.ExecutionResult {
	return domain.ExecutionResult{
		Output:   fmt.Sprintf("failed to launch %s: %v", spec.ID, err),
		ExitCode: -1,
		Error:    true,
		Language: spec.ID,
	}
}
