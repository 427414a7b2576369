// Package hive implements the conversation orchestration engine: a Host
// directs messages at named drones, the engine routes each message,
// maintains the append-only conversation log, frames model requests per
// recipient, assembles streamed replies, and injects retrieved knowledge
// as synthetic turns.
package hive

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"hivemind/internal/backend"
	"hivemind/internal/brain"
	"hivemind/internal/lab"
	"hivemind/internal/logging"
	"hivemind/internal/store"
)

// Defaults for a fresh session.
const (
	ModeModerated        = "moderated"
	DefaultWorkspaceDir  = "the_wormhole"
	DefaultCollection    = "TheBrain"
	DefaultTopK          = 5
	contextJoinSeparator = "\n\n---\n\n"
	emptyContextText     = "[No context returned from TheBrain.]"
)

// BrainFactory lazily establishes the knowledge-store connection. The
// session calls it at most once on the first retrieval request and reuses
// the handle thereafter; reconnect-on-failure is the caller's concern.
type BrainFactory func(ctx context.Context) (brain.Store, error)

// Session coordinates one conversation between the Host and a swarm of
// drones. One request is processed start to finish before the next
// begins; nothing here is safe for concurrent mutation.
type Session struct {
	ID           string
	Mode         string
	Execute      bool
	WorkspaceDir string
	Collection   string
	TopK         int

	Directory *Directory
	Log       *Log

	backend      backend.Client
	runner       lab.Runner
	brainFactory BrainFactory
	brainStore   brain.Store
	archive      *store.Archive
	publish      Publisher
	streaming    bool
}

// Option configures a Session at construction.
type Option func(*Session)

// WithMode sets the coordination mode. Unrecognized modes are carried and
// round-tripped unchanged; only ModeModerated is interpreted today.
func WithMode(mode string) Option {
	return func(s *Session) { s.Mode = mode }
}

// WithExecute enables the code-execution bridge for Host messages.
func WithExecute(execute bool) Option {
	return func(s *Session) { s.Execute = execute }
}

// WithBackend sets the inference backend collaborator.
func WithBackend(client backend.Client) Option {
	return func(s *Session) { s.backend = client }
}

// WithRunner sets the code-execution collaborator.
func WithRunner(runner lab.Runner) Option {
	return func(s *Session) { s.runner = runner }
}

// WithBrainFactory sets the lazy knowledge-store factory.
func WithBrainFactory(factory BrainFactory) Option {
	return func(s *Session) { s.brainFactory = factory }
}

// WithArchive mirrors committed turns into a session archive.
func WithArchive(archive *store.Archive) Option {
	return func(s *Session) { s.archive = archive }
}

// WithWorkspaceDir overrides the scratch directory for script execution.
func WithWorkspaceDir(dir string) Option {
	return func(s *Session) { s.WorkspaceDir = dir }
}

// WithCollection overrides the knowledge-store collection name.
func WithCollection(name string) Option {
	return func(s *Session) { s.Collection = name }
}

// WithTopK overrides the default retrieval depth.
func WithTopK(topK int) Option {
	return func(s *Session) {
		if topK > 0 {
			s.TopK = topK
		}
	}
}

// WithStreaming toggles streaming replies (on by default).
func WithStreaming(streaming bool) Option {
	return func(s *Session) { s.streaming = streaming }
}

// WithPublisher sets the transcript snapshot side-channel.
func WithPublisher(publish Publisher) Option {
	return func(s *Session) { s.publish = publish }
}

// New creates a session with a fresh identifier and an empty swarm, and
// makes sure the workspace scratch directory exists.
func New(opts ...Option) (*Session, error) {
	s := &Session{
		ID:           uuid.NewString(),
		Mode:         ModeModerated,
		WorkspaceDir: DefaultWorkspaceDir,
		Collection:   DefaultCollection,
		TopK:         DefaultTopK,
		Directory:    NewDirectory(),
		Log:          &Log{},
		streaming:    true,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(s.WorkspaceDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workspace directory: %w", err)
	}

	logging.Session("Session %s created (mode=%s, execute=%v)", s.ID, s.Mode, s.Execute)
	return s, nil
}

// commit appends a turn to the log and mirrors it into the archive when
// one is attached. Archive failures are logged, never fatal: the log is
// the source of truth.
func (s *Session) commit(name, content string) {
	s.Log.Append(name, content)
	if s.archive != nil {
		if err := s.archive.RecordTurn(s.ID, s.Log.Len(), name, content); err != nil {
			logging.SessionWarn("Failed to archive turn %d: %v", s.Log.Len(), err)
		}
	}
}

// Ask routes a directed Host message to the addressed drone and returns
// its reply. Address failures (ErrNoAddress, ErrUnknownDrone) leave the
// log untouched; either the Host turn and a reply are committed together,
// or — on backend failure only — the Host turn alone remains committed.
func (s *Session) Ask(ctx context.Context, prompt string) (string, error) {
	target, err := ResolveAddress(prompt, s.Directory)
	if err != nil {
		logging.SessionDebug("Address resolution failed: %v", err)
		return "", err
	}
	drone, _ := s.Directory.Get(target)

	full := prompt
	if s.Execute {
		if report := s.executeCodeBlocks(ctx, prompt); report != "" {
			full = prompt + report
		}
	}

	s.commit(HostName, full)
	logging.Session("Host -> %s (%d turns in log)", target, s.Log.Len())

	messages := BuildMessages(drone, s.Log.Turns())
	return s.assembleReply(ctx, drone, messages)
}

// Brainscan answers a query through a drone using knowledge-store context
// instead of conversation history. The Host query and the retrieved
// context are committed together before the model call; they stay
// committed even if the model call fails, because the context record is
// independently valuable. A store failure or zero hits commits nothing.
func (s *Session) Brainscan(ctx context.Context, droneName, query string, topK int) (string, error) {
	drone, ok := s.Directory.Get(droneName)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownDrone, droneName)
	}
	if topK <= 0 {
		topK = s.TopK
	}

	st, err := s.brainHandle(ctx)
	if err != nil {
		return "", err
	}

	hits, err := st.NearText(ctx, s.Collection, query, topK)
	if err != nil {
		return "", fmt.Errorf("error querying TheBrain (did you run `make ingest`?): %w", err)
	}
	if len(hits) == 0 {
		logging.Brain("No context for query %q", query)
		return "", fmt.Errorf("%w for query %q", ErrNoContext, query)
	}

	texts := make([]string, 0, len(hits))
	for _, hit := range hits {
		if hit.Text != "" {
			texts = append(texts, hit.Text)
		}
	}
	contextBlock := strings.Join(texts, contextJoinSeparator)
	if contextBlock == "" {
		contextBlock = emptyContextText
	}

	// Both context turns commit together, ahead of the model call.
	s.commit(HostName, fmt.Sprintf("Host: Using the following knowledge from TheBrain, answer this query: \"%s\"", query))
	s.commit(BrainName, "CONTEXT:\n"+contextBlock)
	logging.Session("Brainscan %q -> %s (%d hits)", query, droneName, len(hits))

	messages := BuildBrainMessages(drone, query, contextBlock)
	return s.assembleReply(ctx, drone, messages)
}

// brainHandle returns the knowledge-store handle, establishing it on
// first use.
func (s *Session) brainHandle(ctx context.Context) (brain.Store, error) {
	if s.brainStore != nil {
		return s.brainStore, nil
	}
	if s.brainFactory == nil {
		return nil, fmt.Errorf("no knowledge store configured")
	}
	st, err := s.brainFactory(ctx)
	if err != nil {
		return nil, err
	}
	s.brainStore = st
	return st, nil
}

// Transcript renders the current conversation log.
func (s *Session) Transcript() string {
	return RenderTranscript(s.Log.Turns())
}

// Close releases the lazily established knowledge-store handle.
func (s *Session) Close() error {
	if s.brainStore != nil {
		err := s.brainStore.Close()
		s.brainStore = nil
		return err
	}
	return nil
}
