package hive

import (
	"context"
	"errors"
	"os"

	"hivemind/internal/backend"
	"hivemind/internal/brain"
)

// fakeBackend scripts backend replies for session tests.
type fakeBackend struct {
	reply  string
	deltas []string
	err    error

	chatCalls   int
	streamCalls int
	lastModel   string
	lastMsgs    []backend.Message
}

func (f *fakeBackend) Chat(ctx context.Context, model string, messages []backend.Message, options map[string]any) (string, error) {
	f.chatCalls++
	f.lastModel = model
	f.lastMsgs = messages
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeBackend) ChatStream(ctx context.Context, model string, messages []backend.Message, options map[string]any) (<-chan string, <-chan error) {
	f.streamCalls++
	f.lastModel = model
	f.lastMsgs = messages

	deltas := make(chan string, len(f.deltas))
	errs := make(chan error, 1)
	go func() {
		defer close(deltas)
		defer close(errs)
		for _, d := range f.deltas {
			deltas <- d
		}
		if f.err != nil {
			errs <- f.err
		}
	}()
	return deltas, errs
}

// fakeStore scripts knowledge-store hits.
type fakeStore struct {
	hits []brain.Hit
	err  error

	queries     []string
	collections []string
	topKs       []int
	closed      int
}

func (f *fakeStore) NearText(ctx context.Context, collection, query string, topK int) ([]brain.Hit, error) {
	f.queries = append(f.queries, query)
	f.collections = append(f.collections, collection)
	f.topKs = append(f.topKs, topK)
	return f.hits, f.err
}

func (f *fakeStore) Close() error {
	f.closed++
	return nil
}

// fakeRunner records dispatched snippets.
type fakeRunner struct {
	exitCode int
	output   string
	err      error

	scriptPaths    []string
	scriptContents []string
	shellCommands  []string
}

func (f *fakeRunner) RunScript(ctx context.Context, path string) (int, string, error) {
	f.scriptPaths = append(f.scriptPaths, path)
	// Capture the content before the engine removes the file.
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, "", errors.New("script file unreadable: " + err.Error())
	}
	f.scriptContents = append(f.scriptContents, string(data))
	return f.exitCode, f.output, f.err
}

func (f *fakeRunner) RunShell(ctx context.Context, command string) (int, string, error) {
	f.shellCommands = append(f.shellCommands, command)
	return f.exitCode, f.output, f.err
}

// newTestSession builds a session in a temp workspace with the given
// extra options.
func newTestSession(tb interface {
	TempDir() string
	Fatalf(format string, args ...any)
}, opts ...Option) *Session {
	opts = append([]Option{WithWorkspaceDir(tb.TempDir())}, opts...)
	s, err := New(opts...)
	if err != nil {
		tb.Fatalf("New failed: %v", err)
	}
	return s
}
