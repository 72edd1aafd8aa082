package identity

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var (
	parenthesized = regexp.MustCompile(`\([^)]*\)`)
	bracketed     = regexp.MustCompile(`\[[^\]]*\]`)
	articles      = regexp.MustCompile(`\b(a|an|the)\b`)
	punctuation   = regexp.MustCompile(`[^\w\s-]`)
	whitespace    = regexp.MustCompile(`\s+`)
)

// Normalize maps a raw display string to its comparison form.
//
// "The Beatles (Remastered 2009)" and "beatles" both normalize to "beatles".
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	text = strings.ToLower(text)
	text = parenthesized.ReplaceAllString(text, "")
	text = bracketed.ReplaceAllString(text, "")
	// compatibility forms can decompose to uppercase ASCII, so fold case again
	text = strings.ToLower(foldASCII(text))
	text = articles.ReplaceAllString(text, "")
	text = punctuation.ReplaceAllString(text, "")
	// stripping punctuation can expose a new article ("t.he")
	text = articles.ReplaceAllString(text, "")
	text = whitespace.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}

// foldASCII applies NFKD and drops every code point outside ASCII.
func foldASCII(text string) string {
	decomposed := norm.NFKD.String(text)

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if r < utf8.RuneSelf {
			b.WriteRune(r)
		}
	}
	return b.String()
}
