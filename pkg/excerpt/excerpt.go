// Package excerpt composes and parses quoted-source blocks embedded in
// kickoff messages.
package excerpt

import "strings"

// Source is one quoted excerpt from a named source document.
type Source struct {
	Title   string
	Locator string // e.g. a section id, page, or URL fragment
	Quote   string
}

// Format renders a source as a tag-delimited quoted block:
//
//	[SOURCE: <title> | <locator>]
//	> quoted line
//	[/SOURCE]
//
// The locator segment is omitted when empty. Blank quotes render as an
// empty block body.
func Format(s Source) string {
	var b strings.Builder
	b.WriteString("[SOURCE: ")
	b.WriteString(s.Title)
	if s.Locator != "" {
		b.WriteString(" | ")
		b.WriteString(s.Locator)
	}
	b.WriteString("]\n")
	for _, line := range strings.Split(strings.TrimRight(s.Quote, "\n"), "\n") {
		b.WriteString("> ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("[/SOURCE]")
	return b.String()
}

// Parse extracts the first source block from text. The second return is
// false when no well-formed block is present.
func Parse(text string) (Source, bool) {
	start := strings.Index(text, "[SOURCE: ")
	if start < 0 {
		return Source{}, false
	}
	rest := text[start+len("[SOURCE: "):]
	headEnd := strings.Index(rest, "]")
	if headEnd < 0 {
		return Source{}, false
	}
	head := rest[:headEnd]
	body := rest[headEnd+1:]
	end := strings.Index(body, "[/SOURCE]")
	if end < 0 {
		return Source{}, false
	}
	body = body[:end]

	var s Source
	if i := strings.Index(head, " | "); i >= 0 {
		s.Title = head[:i]
		s.Locator = head[i+3:]
	} else {
		s.Title = head
	}

	var quoted []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "> ") {
			quoted = append(quoted, strings.TrimPrefix(line, "> "))
		} else if line == ">" {
			quoted = append(quoted, "")
		}
	}
	s.Quote = strings.Join(quoted, "\n")
	return s, true
}
