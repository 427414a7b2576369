package hive

import (
	"fmt"

	"hivemind/internal/backend"
)

// brainInstruction composes the single user message used on the retrieval
// path: the original query plus the retrieved context block.
const brainInstruction = "Using the following knowledge from TheBrain, answer this query: \"%s\"\n\nCONTEXT:\n%s"

// BuildMessages composes the model request for a directed message. The
// persona leads as the system message; every committed turn follows,
// framed for the addressed drone: its own prior utterances become
// assistant turns verbatim, everyone else's input becomes a user turn
// labeled by origin. This framing is what lets a two-party chat format
// carry a multi-party dialogue.
func BuildMessages(target Drone, turns []Turn) []backend.Message {
	messages := make([]backend.Message, 0, len(turns)+1)
	messages = append(messages, backend.Message{Role: backend.RoleSystem, Content: target.Persona})

	for _, turn := range turns {
		if turn.Name == target.Name {
			messages = append(messages, backend.Message{Role: backend.RoleAssistant, Content: turn.Content})
			continue
		}
		messages = append(messages, backend.Message{
			Role:    backend.RoleUser,
			Content: fmt.Sprintf("[%s]: %s", turn.Name, turn.Content),
		})
	}

	return messages
}

// BuildBrainMessages composes the fixed two-message request for a
// retrieval-augmented turn: persona, then a single instruction embedding
// the query and the context block. Deliberately narrower than the directed
// path; prior history is not included.
func BuildBrainMessages(target Drone, query, context string) []backend.Message {
	return []backend.Message{
		{Role: backend.RoleSystem, Content: target.Persona},
		{Role: backend.RoleUser, Content: fmt.Sprintf(brainInstruction, query, context)},
	}
}
