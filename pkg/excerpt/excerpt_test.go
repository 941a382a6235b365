package excerpt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatParseRoundTrip(t *testing.T) {
	src := Source{
		Title:   "Field Notes 2026",
		Locator: "§4.2",
		Quote:   "first observed line\nsecond observed line",
	}
	block := Format(src)
	got, ok := Parse(block)
	require.True(t, ok)
	assert.Equal(t, src, got)
}

func TestFormatOmitsEmptyLocator(t *testing.T) {
	block := Format(Source{Title: "Memo", Quote: "one line"})
	assert.Contains(t, block, "[SOURCE: Memo]\n")
	assert.NotContains(t, block, " | ")
}

func TestParseInsideSurroundingProse(t *testing.T) {
	text := "Some preamble.\n\n" + Format(Source{Title: "T", Quote: "q"}) + "\n\ntrailing text"
	got, ok := Parse(text)
	require.True(t, ok)
	assert.Equal(t, "T", got.Title)
	assert.Equal(t, "q", got.Quote)
}

func TestParseRejectsMalformed(t *testing.T) {
	_, ok := Parse("no block here")
	assert.False(t, ok)
	_, ok = Parse("[SOURCE: unterminated\n> text")
	assert.False(t, ok)
}
