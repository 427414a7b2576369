package lab

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"hivemind/internal/logging"
)

// RunnerConfig controls how the direct runner executes snippets.
type RunnerConfig struct {
	// Interpreter runs script files. Default: python3.
	Interpreter string
	// Shell runs inline commands via `<shell> -c`. Default: sh.
	Shell string
	// Timeout bounds each execution. Default: 2 minutes.
	Timeout time.Duration
	// MaxOutputBytes caps captured output; excess is discarded.
	// Default: 256 KiB.
	MaxOutputBytes int64
	// WorkDir is the working directory for executions. Empty means the
	// process's current directory.
	WorkDir string
}

// DefaultRunnerConfig returns sensible defaults.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Interpreter:    "python3",
		Shell:          "sh",
		Timeout:        2 * time.Minute,
		MaxOutputBytes: 256 * 1024,
	}
}

// DirectRunner executes snippets directly on the host using os/exec.
// This is the simplest runner with no sandboxing beyond a timeout and an
// output cap.
type DirectRunner struct {
	config RunnerConfig
}

// NewDirectRunner creates a direct runner with default config.
func NewDirectRunner() *DirectRunner {
	return NewDirectRunnerWithConfig(DefaultRunnerConfig())
}

// NewDirectRunnerWithConfig creates a direct runner with custom config.
func NewDirectRunnerWithConfig(config RunnerConfig) *DirectRunner {
	defaults := DefaultRunnerConfig()
	if config.Interpreter == "" {
		config.Interpreter = defaults.Interpreter
	}
	if config.Shell == "" {
		config.Shell = defaults.Shell
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.MaxOutputBytes <= 0 {
		config.MaxOutputBytes = defaults.MaxOutputBytes
	}
	return &DirectRunner{config: config}
}

// RunScript executes a script file with the configured interpreter.
func (r *DirectRunner) RunScript(ctx context.Context, path string) (int, string, error) {
	logging.Lab("Running script: %s %s", r.config.Interpreter, path)
	return r.run(ctx, r.config.Interpreter, path)
}

// RunShell executes an inline command with the configured shell.
func (r *DirectRunner) RunShell(ctx context.Context, command string) (int, string, error) {
	logging.Lab("Running shell command (%d bytes)", len(command))
	return r.run(ctx, r.config.Shell, "-c", command)
}

func (r *DirectRunner) run(ctx context.Context, binary string, args ...string) (int, string, error) {
	execCtx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, binary, args...)
	cmd.Dir = r.config.WorkDir

	// Combined capture through one size-limited writer keeps stdout and
	// stderr interleaved roughly in emission order.
	var buf bytes.Buffer
	limited := &limitedWriter{w: &buf, max: r.config.MaxOutputBytes}
	cmd.Stdout = limited
	cmd.Stderr = limited

	started := time.Now()
	err := cmd.Run()
	output := buf.String()

	if limited.truncated {
		output += fmt.Sprintf("\n[output truncated: %d bytes discarded]", limited.discarded)
		logging.LabWarn("Execution output truncated: %d bytes discarded", limited.discarded)
	}

	if err != nil {
		if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
			logging.LabWarn("Execution killed after %s (timeout %s)", time.Since(started), r.config.Timeout)
			return 0, output, fmt.Errorf("execution timed out after %s", r.config.Timeout)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// The process ran and exited non-zero.
			logging.LabDebug("Execution exited %d in %s", exitErr.ExitCode(), time.Since(started))
			return exitErr.ExitCode(), output, nil
		}
		logging.Get(logging.CategoryLab).Error("Execution failed to start: %v", err)
		return 0, output, fmt.Errorf("execution failed: %w", err)
	}

	logging.LabDebug("Execution exited 0 in %s", time.Since(started))
	return 0, output, nil
}

// limitedWriter discards bytes past max, recording how many were dropped.
type limitedWriter struct {
	w         *bytes.Buffer
	max       int64
	written   int64
	discarded int64
	truncated bool
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	remaining := lw.max - lw.written
	if remaining <= 0 {
		lw.truncated = true
		lw.discarded += int64(len(p))
		return len(p), nil
	}
	if int64(len(p)) > remaining {
		lw.truncated = true
		lw.discarded += int64(len(p)) - remaining
		lw.written += remaining
		lw.w.Write(p[:remaining])
		return len(p), nil
	}
	lw.written += int64(len(p))
	return lw.w.Write(p)
}
