package hive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"hivemind/internal/logging"
)

// fencedBlockPattern matches ```python or ```sh fenced blocks. Exactly
// these two tags are executable; the scan is non-overlapping and
// order-preserving across multiple blocks in one message.
var fencedBlockPattern = regexp.MustCompile("(?s)```(python|sh)\n(.*?)```")

// executeCodeBlocks extracts executable fenced blocks from a Host message,
// dispatches each to the lab, and returns the concatenated report sections
// prefixed by a blank-line separator. Returns "" when the message has no
// executable blocks; no workspace I/O happens in that case. Dispatch
// failures become report text, never errors.
func (s *Session) executeCodeBlocks(ctx context.Context, prompt string) string {
	matches := fencedBlockPattern.FindAllStringSubmatch(prompt, -1)
	if len(matches) == 0 {
		return ""
	}

	logging.Lab("Executing %d fenced block(s) from Host message", len(matches))

	sections := make([]string, 0, len(matches))
	for _, match := range matches {
		tag, code := match[1], match[2]
		header := fmt.Sprintf("--- EXECUTING %s ---", strings.ToUpper(tag))

		var body string
		exitCode, output, err := s.dispatchBlock(ctx, tag, strings.TrimSpace(code))
		if err != nil {
			logging.LabWarn("Block dispatch failed (%s): %v", tag, err)
			body = fmt.Sprintf("EXECUTION FAILED:\n%v", err)
		} else {
			body = fmt.Sprintf("EXIT CODE: %d\n\nOUTPUT:\n%s", exitCode, output)
		}

		sections = append(sections, fmt.Sprintf("%s\n%s\n--- END ---", header, body))
	}

	return "\n\n" + strings.Join(sections, "\n\n")
}

// dispatchBlock routes one snippet to the runner for its tag. Python
// snippets go through a scoped temporary file inside the workspace; the
// file is removed on every exit path. Shell snippets run inline.
func (s *Session) dispatchBlock(ctx context.Context, tag, code string) (int, string, error) {
	if s.runner == nil {
		return 0, "", fmt.Errorf("no execution runner configured")
	}

	if tag == "sh" {
		return s.runner.RunShell(ctx, code)
	}

	name := fmt.Sprintf("script_%s.py", strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	path := filepath.Join(s.WorkspaceDir, name)
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		return 0, "", fmt.Errorf("failed to write script file: %w", err)
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logging.LabWarn("Failed to remove script file %s: %v", path, err)
		}
	}()

	return s.runner.RunScript(ctx, path)
}
