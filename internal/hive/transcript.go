package hive

import "strings"

// RenderTranscript renders the conversation log as markdown: a session
// heading, then one bold speaker header per turn followed by its content
// with trailing whitespace trimmed. The result has no leading or trailing
// blank lines and always ends with exactly one newline.
func RenderTranscript(turns []Turn) string {
	lines := []string{"# HiveMind Session", ""}
	for _, turn := range turns {
		lines = append(lines,
			"**"+turn.Name+":**",
			"",
			strings.TrimRight(turn.Content, " \t\r\n"),
			"",
		)
	}
	return strings.TrimSpace(strings.Join(lines, "\n")) + "\n"
}
