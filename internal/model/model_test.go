package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenUsage_Add(t *testing.T) {
	var u TokenUsage
	u.Add(TokenUsage{InputTokens: 100, OutputTokens: 50, CacheCreationTokens: 10, CacheReadTokens: 5})
	u.Add(TokenUsage{InputTokens: 200, OutputTokens: 25})

	assert.Equal(t, 300, u.InputTokens)
	assert.Equal(t, 75, u.OutputTokens)
	assert.Equal(t, 10, u.CacheCreationTokens)
	assert.Equal(t, 5, u.CacheReadTokens)
}

func TestDocumentResult_SourceBreakdown(t *testing.T) {
	r := DocumentResult{
		Pages: []PageText{
			{PageNumber: 1, Source: SourceNativeText},
			{PageNumber: 2, Source: SourceVisionModel},
			{PageNumber: 3, Source: SourceNativeText},
			{PageNumber: 4, Source: SourceTraditionalOCR},
		},
	}

	breakdown := r.SourceBreakdown()
	assert.Equal(t, 2, breakdown[SourceNativeText])
	assert.Equal(t, 1, breakdown[SourceVisionModel])
	assert.Equal(t, 1, breakdown[SourceTraditionalOCR])
}

func TestGeneralContext(t *testing.T) {
	ctx := GeneralContext()
	assert.Equal(t, "general", ctx.Category)
	assert.NotEmpty(t, ctx.PromptFocus)
}

func TestResultFromDocument(t *testing.T) {
	doc := &DocumentResult{
		Title:           "Benefits Guide",
		Context:         DocumentContext{Category: "insurance"},
		Pages:           []PageText{{PageNumber: 1, Source: SourceVisionModel}},
		Markdown:        "# Benefits Guide",
		VisionCallsUsed: 1,
		Usage:           TokenUsage{InputTokens: 500},
		ProcessingTime:  3 * time.Second,
	}

	result := ResultFromDocument(doc)
	assert.Equal(t, "Benefits Guide", result.Title)
	assert.Equal(t, "insurance", result.Category)
	assert.Equal(t, 1, result.PageCount)
	assert.Equal(t, 1, result.VisionCallsUsed)
	assert.Equal(t, 1, result.Sources[SourceVisionModel])
	assert.Equal(t, int64(3000), result.ProcessingMS)
}

func TestAllExtractionSources(t *testing.T) {
	assert.Equal(t, []ExtractionSource{SourceNativeText, SourceVisionModel, SourceTraditionalOCR}, AllExtractionSources())
}
