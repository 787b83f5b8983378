package model

// ExtractionSource identifies which cascade stage produced a page's text.
type ExtractionSource string

const (
	SourceNativeText     ExtractionSource = "native_text"
	SourceVisionModel    ExtractionSource = "vision_model"
	SourceTraditionalOCR ExtractionSource = "traditional_ocr"
)

// AllExtractionSources returns every valid source value.
func AllExtractionSources() []ExtractionSource {
	return []ExtractionSource{
		SourceNativeText,
		SourceVisionModel,
		SourceTraditionalOCR,
	}
}

// PageText is the extraction result for a single page. Immutable once
// created; owned by the per-document result.
type PageText struct {
	PageNumber       int              `json:"page_number"` // 1-indexed
	RawContent       string           `json:"raw_content"`
	Source           ExtractionSource `json:"source"`
	CorruptionReason string           `json:"corruption_reason,omitempty"`
}
