package hive

import "slices"

// Turn is one committed (speaker, content) entry in the conversation log.
// Ordering is the sole sequencing mechanism; a turn is committed only once
// its content is fully known.
type Turn struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Log is the append-only conversation history. Turns are never edited or
// removed after commit.
type Log struct {
	turns []Turn
}

// Append commits a turn to the log.
func (l *Log) Append(name, content string) {
	l.turns = append(l.turns, Turn{Name: name, Content: content})
}

// Turns returns a copy of the committed turns in order.
func (l *Log) Turns() []Turn {
	return slices.Clone(l.turns)
}

// Len returns the number of committed turns.
func (l *Log) Len() int {
	return len(l.turns)
}
