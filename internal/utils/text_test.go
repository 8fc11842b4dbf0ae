package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripHTML(t *testing.T) {
	in := "<p>A <b>bold</b> premiere &amp; after-party</p>\n<img src=x onerror=alert(1)>"
	assert.Equal(t, "A bold premiere & after-party", StripHTML(in))
}

func TestStripHTML_PlainTextUntouched(t *testing.T) {
	assert.Equal(t, "just words", StripHTML("just   words"))
}

func TestExcerpt_ShortBody(t *testing.T) {
	assert.Equal(t, "short review", Excerpt("<p>short review</p>", 280))
}

func TestExcerpt_TruncatesOnWordBoundary(t *testing.T) {
	body := "<p>" + strings.Repeat("word ", 100) + "</p>"
	got := Excerpt(body, 50)
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.LessOrEqual(t, len([]rune(got)), 51)
	assert.NotContains(t, got, "<p>")
	// no split word before the ellipsis
	trimmed := strings.TrimSuffix(got, "…")
	assert.True(t, strings.HasSuffix(trimmed, "word"), "got %q", got)
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Zendaya":                 "zendaya",
		"The  Dune: Part Two!":    "the-dune-part-two",
		"  Météo & Friends  ":     "météo-friends",
		"---":                     "",
		"Already-Slugged-Title":   "already-slugged-title",
		"Crash (2026) — review!!": "crash-2026-review",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "in=%q", in)
	}
}
