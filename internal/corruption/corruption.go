// Package corruption scores extracted page text for OCR corruption and
// decides whether a page should escalate to the vision extractor.
package corruption

import (
	"fmt"
	"strings"
)

// Config holds the scorer thresholds. The numeric defaults are empirically
// tuned against the document corpus; keep them configurable rather than
// inlined in heuristic bodies.
type Config struct {
	// Escalation decision.
	Threshold           float64
	MinAnalyzableLength int
	MinContentLength    int

	// Per-heuristic trigger ratios.
	SpaceRatioLimit     float64
	ReversedWordRatio   float64
	SingleCharRatio     float64
	EncodingNoiseRatio  float64
	QuestionMarkRatio   float64
	ShortSentenceRatio  float64
	MinAvgWordLength    float64
	MinWordsPerSentence float64

	// Content sparsity.
	MinSubstantialLines   int
	SubstantialLineLength int

	// Reversed-word detection lists. The matching shape (prefix/suffix/whole
	// word) is the contract; the default lists are corpus-specific.
	ReversedPrefixes []string
	ReversedSuffixes []string
	ReversedWords    []string

	// Keyword lists for table-structure heuristics.
	TableKeywords      []string
	StructuralKeywords []string
}

// DefaultConfig returns the tuned production configuration.
func DefaultConfig() Config {
	return Config{
		Threshold:             0.10,
		MinAnalyzableLength:   10,
		MinContentLength:      100,
		SpaceRatioLimit:       0.5,
		ReversedWordRatio:     0.05,
		SingleCharRatio:       0.1,
		EncodingNoiseRatio:    0.01,
		QuestionMarkRatio:     0.008,
		ShortSentenceRatio:    0.3,
		MinAvgWordLength:      2.5,
		MinWordsPerSentence:   5,
		MinSubstantialLines:   2,
		SubstantialLineLength: 20,
		ReversedPrefixes:      []string{"gni", "noi", "eci", "de", "er"},
		ReversedSuffixes:      []string{"erp", "bus", "noc", "red"},
		ReversedWords:         []string{"synapmoc", "ecnarusni", "dradnats"},
		TableKeywords:         []string{"condition", "additional", "topical", "fluoride", "cleaning", "benefit"},
		StructuralKeywords:    []string{"eligible", "condition", "benefit", "coverage", "yes", "no"},
	}
}

// Verdict is the scoring outcome for one text blob.
type Verdict struct {
	Escalate bool     `json:"escalate"`
	Score    float64  `json:"score"`
	Reasons  []string `json:"reasons,omitempty"`
}

// Reason joins the triggered reasons into a single diagnostic string.
func (v Verdict) Reason() string {
	if len(v.Reasons) == 0 {
		return fmt.Sprintf("clean_text(score:%.2f)", v.Score)
	}
	return strings.Join(v.Reasons, "; ")
}

// Detector runs the heuristic battery. Stateless; safe for concurrent use.
type Detector struct {
	cfg Config
}

// NewDetector creates a Detector with the given configuration.
func NewDetector(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

// Score runs every heuristic over the text and sums the partial scores.
// Pure and deterministic: identical input always yields an identical verdict.
func (d *Detector) Score(text string) Verdict {
	var v Verdict
	for _, h := range battery {
		partial, reason := h(d.cfg, text)
		if partial > 0 {
			v.Score += partial
			v.Reasons = append(v.Reasons, reason)
		}
	}

	trimmed := len(strings.TrimSpace(text))
	if trimmed < d.cfg.MinContentLength {
		v.Reasons = append(v.Reasons, fmt.Sprintf("content_below_minimum(len:%d)", trimmed))
		v.Escalate = true
	}
	if v.Score >= d.cfg.Threshold {
		v.Escalate = true
	}
	return v
}

// Decide applies the two hard gates before scoring: an exhausted vision
// budget or a text too short to analyze both short-circuit to "do not
// escalate" with a gate-specific reason.
func (d *Detector) Decide(text string, callsUsed, maxCalls int) Verdict {
	if callsUsed >= maxCalls {
		return Verdict{
			Reasons: []string{fmt.Sprintf("vision_budget_exhausted(max:%d)", maxCalls)},
		}
	}

	trimmed := len(strings.TrimSpace(text))
	if trimmed < d.cfg.MinAnalyzableLength {
		return Verdict{
			Reasons: []string{fmt.Sprintf("text_below_analyzable_minimum(len:%d)", trimmed)},
		}
	}

	return d.Score(text)
}
