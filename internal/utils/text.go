package utils

// text.go holds small text helpers for content records: stripping the rich
// HTML review bodies down to plain-text excerpts and deriving URL slugs.

import (
    "html"
    "strings"
    "unicode"

    "github.com/microcosm-cc/bluemonday"
)

// stripPolicy removes every tag and attribute; only text nodes survive.
var stripPolicy = bluemonday.StrictPolicy()

// StripHTML returns the plain text contained in an HTML fragment with
// entities decoded and runs of whitespace collapsed to single spaces.
func StripHTML(s string) string {
    plain := html.UnescapeString(stripPolicy.Sanitize(s))
    return strings.Join(strings.Fields(plain), " ")
}

// Excerpt strips HTML from body and truncates the result to at most max
// runes, appending an ellipsis when truncation happened.  Truncation never
// splits a word unless the first word alone exceeds the limit.
func Excerpt(body string, max int) string {
    plain := StripHTML(body)
    runes := []rune(plain)
    if len(runes) <= max {
        return plain
    }
    cut := string(runes[:max])
    if i := strings.LastIndexByte(cut, ' '); i > 0 {
        cut = cut[:i]
    }
    return cut + "…"
}

// Slugify converts a title into a lowercase hyphen-separated URL slug.
// Non-alphanumeric runes become separators; consecutive separators collapse.
func Slugify(s string) string {
    var b strings.Builder
    lastHyphen := true // suppress a leading hyphen
    for _, r := range strings.ToLower(s) {
        switch {
        case unicode.IsLetter(r) || unicode.IsDigit(r):
            b.WriteRune(r)
            lastHyphen = false
        default:
            if !lastHyphen {
                b.WriteByte('-')
                lastHyphen = true
            }
        }
    }
    return strings.TrimRight(b.String(), "-")
}
