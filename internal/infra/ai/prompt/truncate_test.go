package prompt

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abcdef", 3))
	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "abc", truncate("abc", 0), "zero disables truncation")
}

func TestTruncateKeepsMultiByteRunesWhole(t *testing.T) {
	// each rune is three bytes; a byte-index cut would land mid-character
	s := strings.Repeat("日本語", 4)
	got := truncate(s, 5)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 5, utf8.RuneCountInString(got))
	assert.Equal(t, "日本語日本", got)
}

func TestRelevanceUserPromptTruncatesBodyByRunes(t *testing.T) {
	body := strings.Repeat("ä", 50)
	got := RelevanceUserPrompt("Watch", "", "Title", body, 10)
	assert.True(t, utf8.ValidString(got))
	assert.Contains(t, got, strings.Repeat("ä", 10))
	assert.NotContains(t, got, strings.Repeat("ä", 11))
}
