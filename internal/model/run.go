package model

import "time"

// RunStatus tracks a document run through its lifecycle.
type RunStatus string

const (
	RunStatusQueued     RunStatus = "queued"
	RunStatusProcessing RunStatus = "processing"
	RunStatusComplete   RunStatus = "complete"
	RunStatusFailed     RunStatus = "failed"
)

// Run is the persisted record of one document conversion.
type Run struct {
	ID        string     `json:"id"`
	Path      string     `json:"path"`
	Status    RunStatus  `json:"status"`
	Result    *RunResult `json:"result,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RunResult is the stored outcome of a completed or failed run.
type RunResult struct {
	Title           string                   `json:"title,omitempty"`
	Category        string                   `json:"category"`
	PageCount       int                      `json:"page_count"`
	VisionCallsUsed int                      `json:"vision_calls_used"`
	Sources         map[ExtractionSource]int `json:"sources"`
	Usage           TokenUsage               `json:"usage"`
	Markdown        string                   `json:"markdown,omitempty"`
	ProcessingMS    int64                    `json:"processing_ms"`
	Error           string                   `json:"error,omitempty"`
}

// ResultFromDocument converts an in-memory document result to its stored form.
func ResultFromDocument(r *DocumentResult) *RunResult {
	return &RunResult{
		Title:           r.Title,
		Category:        r.Context.Category,
		PageCount:       len(r.Pages),
		VisionCallsUsed: r.VisionCallsUsed,
		Sources:         r.SourceBreakdown(),
		Usage:           r.Usage,
		Markdown:        r.Markdown,
		ProcessingMS:    r.ProcessingTime.Milliseconds(),
	}
}
