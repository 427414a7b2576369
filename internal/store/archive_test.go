package store

import (
	"path/filepath"
	"testing"
)

func newTestArchive(t *testing.T) *Archive {
	t.Helper()
	archive, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("Failed to open archive: %v", err)
	}
	t.Cleanup(func() { archive.Close() })
	return archive
}

func TestRecordTurn(t *testing.T) {
	archive := newTestArchive(t)

	if err := archive.RecordTurn("sess-1", 1, "Host", "@Echo hi"); err != nil {
		t.Fatalf("RecordTurn failed: %v", err)
	}
	if err := archive.RecordTurn("sess-1", 2, "Echo", "hello"); err != nil {
		t.Fatalf("RecordTurn failed: %v", err)
	}

	// Re-recording turn 1 is ignored, not an error.
	if err := archive.RecordTurn("sess-1", 1, "Host", "different"); err != nil {
		t.Fatalf("RecordTurn failed on duplicate: %v", err)
	}

	turns, err := archive.SessionTurns("sess-1")
	if err != nil {
		t.Fatalf("SessionTurns failed: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("Expected 2 turns, got %d", len(turns))
	}
	if turns[0].Speaker != "Host" || turns[0].Content != "@Echo hi" {
		t.Errorf("Turn 1 mismatch: %+v", turns[0])
	}
	if turns[1].Speaker != "Echo" || turns[1].Content != "hello" {
		t.Errorf("Turn 2 mismatch: %+v", turns[1])
	}
}

func TestSessionTurnsEmpty(t *testing.T) {
	archive := newTestArchive(t)

	turns, err := archive.SessionTurns("missing")
	if err != nil {
		t.Fatalf("SessionTurns failed: %v", err)
	}
	if len(turns) != 0 {
		t.Errorf("Expected no turns, got %d", len(turns))
	}
}

func TestSessions(t *testing.T) {
	archive := newTestArchive(t)

	archive.RecordTurn("sess-a", 1, "Host", "x")
	archive.RecordTurn("sess-b", 1, "Host", "y")
	archive.RecordTurn("sess-a", 2, "Echo", "z")

	ids, err := archive.Sessions()
	if err != nil {
		t.Fatalf("Sessions failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(ids))
	}
}

func TestOpenCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "sessions.db")
	archive, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer archive.Close()

	if err := archive.RecordTurn("s", 1, "Host", "x"); err != nil {
		t.Fatalf("RecordTurn failed: %v", err)
	}
}
