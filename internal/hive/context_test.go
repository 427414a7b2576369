package hive

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"hivemind/internal/backend"
)

func TestBuildMessages(t *testing.T) {
	echo := Drone{Name: "Echo", Model: "llama3", Persona: "You repeat things."}
	turns := []Turn{
		{Name: "Host", Content: "hi @Echo"},
		{Name: "Echo", Content: "hello"},
		{Name: "Scout", Content: "yo"},
	}

	got := BuildMessages(echo, turns)
	want := []backend.Message{
		{Role: backend.RoleSystem, Content: "You repeat things."},
		{Role: backend.RoleUser, Content: "[Host]: hi @Echo"},
		{Role: backend.RoleAssistant, Content: "hello"},
		{Role: backend.RoleUser, Content: "[Scout]: yo"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BuildMessages mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildMessagesEmptyLog(t *testing.T) {
	echo := Drone{Name: "Echo", Persona: "p"}
	got := BuildMessages(echo, nil)
	if len(got) != 1 || got[0].Role != backend.RoleSystem || got[0].Content != "p" {
		t.Errorf("expected persona-only request, got %#v", got)
	}
}

func TestBuildBrainMessages(t *testing.T) {
	echo := Drone{Name: "Echo", Persona: "p"}

	got := BuildBrainMessages(echo, `what is "flow"?`, "passage one\n\n---\n\npassage two")
	want := []backend.Message{
		{Role: backend.RoleSystem, Content: "p"},
		{Role: backend.RoleUser, Content: "Using the following knowledge from TheBrain, answer this query: \"what is \"flow\"?\"\n\nCONTEXT:\npassage one\n\n---\n\npassage two"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BuildBrainMessages mismatch (-want +got):\n%s", diff)
	}
}
