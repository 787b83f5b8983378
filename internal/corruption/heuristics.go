package corruption

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// heuristic inspects the full text and returns a partial corruption score
// with a reason naming the triggered check, or (0, "") when clean.
type heuristic func(cfg Config, text string) (float64, string)

// battery is the ordered heuristic sequence the Detector iterates. Each
// check contributes at most once to the total score.
var battery = []heuristic{
	checkCharacterSpacing,
	checkReversedWords,
	checkSingleCharWords,
	checkEncodingNoise,
	checkFinancialCorruption,
	checkPunctuationSpam,
	checkFragmentedSentences,
	checkTableStructure,
	checkWordLength,
	checkContentDensity,
	checkSymbolArtifacts,
	checkContentSparsity,
}

// Word characters are matched with Unicode classes, not \w: RE2's \w is
// ASCII-only and would flag every accented letter as noise.
var (
	nonWordRE      = regexp.MustCompile(`[^\p{L}\p{N}_]`)
	encodingRE     = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?;:()\-$%/€£¥'"&@#*]`)
	garbledMoneyRE = regexp.MustCompile(`\$\d*0{2,},\d{1,2}`)
	sentenceRE     = regexp.MustCompile(`[.!?]\s+`)
	paragraphRE    = regexp.MustCompile(`[.!?]\n`)
)

// checkCharacterSpacing flags text where OCR inserted a space between most
// characters ("h e l l o  w o r l d").
func checkCharacterSpacing(cfg Config, text string) (float64, string) {
	spaces := strings.Count(text, " ")
	chars := utf8.RuneCountInString(strings.NewReplacer(" ", "", "\n", "").Replace(text))
	if chars == 0 {
		return 0, ""
	}
	ratio := float64(spaces) / float64(chars)
	if ratio > cfg.SpaceRatioLimit {
		return 0.8, fmt.Sprintf("character_spacing_corruption(ratio:%.2f)", ratio)
	}
	return 0, ""
}

// checkReversedWords matches words against known reversed-text prefixes,
// suffixes, and whole words.
func checkReversedWords(cfg Config, text string) (float64, string) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0, ""
	}

	reversed := 0
	for _, w := range words {
		clean := nonWordRE.ReplaceAllString(strings.ToLower(w), "")
		if utf8.RuneCountInString(clean) < 3 {
			continue
		}
		if hasAnyPrefix(clean, cfg.ReversedPrefixes) ||
			hasAnySuffix(clean, cfg.ReversedSuffixes) ||
			contains(cfg.ReversedWords, clean) {
			reversed++
		}
	}

	if float64(reversed)/float64(len(words)) > cfg.ReversedWordRatio {
		return 0.6, fmt.Sprintf("reversed_words(%d/%d)", reversed, len(words))
	}
	return 0, ""
}

func checkSingleCharWords(cfg Config, text string) (float64, string) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0, ""
	}

	singles := 0
	for _, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if size == len(w) && unicode.IsLetter(r) {
			singles++
		}
	}

	if float64(singles)/float64(len(words)) > cfg.SingleCharRatio {
		return 0.7, fmt.Sprintf("single_char_words(%d)", singles)
	}
	return 0, ""
}

// checkEncodingNoise counts characters outside the allowed punctuation,
// alphanumeric, and currency set.
func checkEncodingNoise(cfg Config, text string) (float64, string) {
	weird := len(encodingRE.FindAllString(text, -1))
	if float64(weird) > float64(utf8.RuneCountInString(text))*cfg.EncodingNoiseRatio {
		return 0.3, fmt.Sprintf("encoding_issues(%d)", weird)
	}
	return 0, ""
}

// checkFinancialCorruption flags currency amounts matching known OCR-garbled
// numeric patterns like $005,2 or $000,15.
func checkFinancialCorruption(_ Config, text string) (float64, string) {
	suspicious := len(garbledMoneyRE.FindAllString(text, -1))
	if suspicious > 0 {
		return 0.5, fmt.Sprintf("financial_corruption(%d)", suspicious)
	}
	return 0, ""
}

func checkPunctuationSpam(cfg Config, text string) (float64, string) {
	questions := strings.Count(text, "?")
	if float64(questions) > float64(utf8.RuneCountInString(text))*cfg.QuestionMarkRatio {
		return 0.3, fmt.Sprintf("question_spam(%d)", questions)
	}
	return 0, ""
}

func checkFragmentedSentences(cfg Config, text string) (float64, string) {
	sentences := sentenceRE.Split(text, -1)
	if len(sentences) <= 1 {
		return 0, ""
	}

	short := 0
	for _, s := range sentences {
		if strings.TrimSpace(s) == "" {
			continue
		}
		if len(strings.Fields(s)) < 3 {
			short++
		}
	}

	if float64(short)/float64(len(sentences)) > cfg.ShortSentenceRatio {
		return 0.4, fmt.Sprintf("fragmented_text(%d/%d)", short, len(sentences))
	}
	return 0, ""
}

// checkTableStructure flags pages that mention several table keywords but
// carry no delimiter characters, a sign the table layout was flattened.
func checkTableStructure(cfg Config, text string) (float64, string) {
	lower := strings.ToLower(text)
	indicators := 0
	for _, kw := range cfg.TableKeywords {
		if strings.Contains(lower, kw) {
			indicators++
		}
	}

	if indicators >= 3 && !strings.Contains(text, "|") {
		return 0.6, fmt.Sprintf("missing_table_structure(indicators:%d)", indicators)
	}
	return 0, ""
}

func checkWordLength(cfg Config, text string) (float64, string) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0, ""
	}

	total := 0
	for _, w := range words {
		total += utf8.RuneCountInString(w)
	}
	avg := float64(total) / float64(len(words))

	if avg < cfg.MinAvgWordLength {
		return 0.5, fmt.Sprintf("short_words(avg:%.1f)", avg)
	}
	return 0, ""
}

// checkContentDensity measures mean words per sentence-like segment; only
// meaningful once at least three segments exist.
func checkContentDensity(cfg Config, text string) (float64, string) {
	segments := paragraphRE.Split(text, -1)
	if len(segments) <= 2 {
		return 0, ""
	}

	total := 0
	for _, s := range segments {
		total += len(strings.Fields(s))
	}
	avg := float64(total) / float64(len(segments))

	if avg < cfg.MinWordsPerSentence {
		return 0.3, fmt.Sprintf("low_content_density(avg_sent:%.1f)", avg)
	}
	return 0, ""
}

// checkSymbolArtifacts flags checkmark glyphs outright, and structural
// keyword clusters that lack table delimiters.
func checkSymbolArtifacts(cfg Config, text string) (float64, string) {
	checkmarks := strings.Count(text, "✓") + strings.Count(text, "✔") + strings.Count(text, "√")
	if checkmarks > 0 {
		return 0.7, fmt.Sprintf("checkmark_symbols(%d)", checkmarks)
	}

	lower := strings.ToLower(text)
	structural := 0
	for _, kw := range cfg.StructuralKeywords {
		if strings.Contains(lower, kw) {
			structural++
		}
	}

	if structural >= 2 && !strings.Contains(text, "|") {
		return 0.6, fmt.Sprintf("table_structure_needs_conversion(words:%d)", structural)
	}
	return 0, ""
}

func checkContentSparsity(cfg Config, text string) (float64, string) {
	substantial := 0
	for _, line := range strings.Split(text, "\n") {
		if utf8.RuneCountInString(strings.TrimSpace(line)) > cfg.SubstantialLineLength {
			substantial++
		}
	}

	if substantial < cfg.MinSubstantialLines {
		return 0.4, fmt.Sprintf("sparse_content(substantial_lines:%d)", substantial)
	}
	return 0, ""
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
