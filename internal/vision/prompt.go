package vision

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/docmark/internal/model"
)

const systemPrompt = `You are an AI vision specialist focused on complete, accurate text recognition from document images. Your primary mission is to capture ALL textual content exactly as it appears while organizing it in a logical, digestible format that preserves every piece of information.`

const basePrompt = `# Document Text Extraction

Extract ALL text from this document maintaining its layout.

For regular text:
- All headers, body text, footnotes, numbers, dates
- Legal text, contact information, disclaimers

For tables:
- Keep column headers clearly separated from data rows
- For multi-line cells, keep lines together with clear cell boundaries
- Empty cells should be represented with appropriate spacing
- Maintain visual column structure so data aligns under headers

Output text exactly as it appears with spatial relationships intact.`

// tablePatterns hint at tabular layout in the native text sample: aligned
// columns, pipe and tab delimiters, and numbered rows.
var tablePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\s{2,}\S+\s{2,}\S+`),
	regexp.MustCompile(`\|.*\|.*\|`),
	regexp.MustCompile(`\t.*\t`),
	regexp.MustCompile(`(?m)^\s*\d+\.\d+\s+.*$`),
}

// promptSampleLength caps how much native text is inspected for table hints.
const promptSampleLength = 1000

var titleCaser = cases.Title(language.English)

// BuildPrompt assembles the per-page extraction prompt: the base
// instructions, the document-type focus from first-page classification,
// table-complexity guidance derived from the native text sample, and
// page-position notes.
func BuildPrompt(docCtx model.DocumentContext, pageNumber int, nativeTextSample string) string {
	var b strings.Builder
	b.WriteString(basePrompt)

	if docCtx.Category != "" && docCtx.Category != "general" {
		fmt.Fprintf(&b, "\n\n**Document Type: %s**\n%s", titleCaser.String(docCtx.Category), docCtx.PromptFocus)
	}

	sample := truncateSample(nativeTextSample)
	if guidance := tableGuidance(sample); guidance != "" {
		b.WriteString(guidance)
	}

	lower := strings.ToLower(sample)
	switch {
	case pageNumber == 1:
		b.WriteString("\n\nThis is the first page. Pay special attention to document headers, titles, and identifying information.")
	case strings.Contains(lower, "continued") || strings.Contains(lower, "page"):
		b.WriteString("\n\nThis appears to be a continuation page. Maintain consistency with previous pages.")
	}

	return b.String()
}

// truncateSample caps the inspected native text, backing off to a rune
// boundary so a multi-byte character is never split.
func truncateSample(s string) string {
	if len(s) <= promptSampleLength {
		return s
	}
	cut := promptSampleLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// tableGuidance escalates instructions when the sample looks table-heavy.
func tableGuidance(sample string) string {
	indicators := 0
	for _, p := range tablePatterns {
		indicators += len(p.FindAllString(sample, -1))
	}

	switch {
	case indicators > 10:
		return "\n\nThis page appears to contain complex tables. Ensure columns align properly and multi-line cells are kept together."
	case indicators > 5:
		return "\n\nThis page contains tabular data. Maintain column alignment and relationships."
	}
	return ""
}
