package model

import "time"

// DocumentContext is the first-page classification used to bias vision
// prompts for every page of the document.
type DocumentContext struct {
	Category    string `json:"category"`
	PromptFocus string `json:"prompt_focus"`
}

// GeneralContext is the fallback context when no category matches or
// classification fails.
func GeneralContext() DocumentContext {
	return DocumentContext{
		Category:    "general",
		PromptFocus: "Extract all text maintaining original layout and structure.",
	}
}

// TokenUsage accumulates LLM token consumption across a document run.
type TokenUsage struct {
	InputTokens         int `json:"input_tokens"`
	OutputTokens        int `json:"output_tokens"`
	CacheCreationTokens int `json:"cache_creation_tokens"`
	CacheReadTokens     int `json:"cache_read_tokens"`
}

// Add accumulates another usage record into u.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.CacheCreationTokens += other.CacheCreationTokens
	u.CacheReadTokens += other.CacheReadTokens
}

// DocumentResult is the assembled outcome of one document processing run.
type DocumentResult struct {
	Path            string          `json:"path"`
	Title           string          `json:"title,omitempty"`
	Context         DocumentContext `json:"context"`
	Pages           []PageText      `json:"pages"`
	Markdown        string          `json:"markdown"`
	VisionCallsUsed int             `json:"vision_calls_used"`
	Usage           TokenUsage      `json:"usage"`
	ProcessingTime  time.Duration   `json:"processing_time"`
}

// SourceBreakdown counts pages by extraction source, for run diagnostics.
func (r *DocumentResult) SourceBreakdown() map[ExtractionSource]int {
	out := make(map[ExtractionSource]int, len(AllExtractionSources()))
	for _, p := range r.Pages {
		out[p.Source]++
	}
	return out
}
