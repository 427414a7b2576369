// Package lab provides the sandboxed code-execution collaborator: run a
// script file or an inline shell command and report the exit status with
// captured output. The engine treats execution failures as report text,
// never as fatal errors.
package lab

import "context"

// Runner is the narrow execution interface consumed by the engine.
// The int result is the process exit code; the string is combined
// stdout+stderr. A non-zero exit code is a result, not an error: the error
// return is reserved for infrastructure failures (missing interpreter,
// unstartable process).
type Runner interface {
	RunScript(ctx context.Context, path string) (int, string, error)
	RunShell(ctx context.Context, command string) (int, string, error)
}
