package optimize

import "strings"

// maxSnippetRunes bounds before/after text kept in an Entry.
const maxSnippetRunes = 120

// Snippet compacts rendered source onto one line and truncates it.
func Snippet(src string) string {
	s := strings.Join(strings.Fields(src), " ")
	s = strings.ReplaceAll(s, "{ }", "{}")
	r := []rune(s)
	if len(r) > maxSnippetRunes {
		return string(r[:maxSnippetRunes-3]) + "..."
	}
	return s
}
