// Package format turns raw extracted page text into markdown and assembles
// per-page sections into a single document.
package format

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/docmark/internal/config"
	"github.com/sells-group/docmark/internal/model"
	"github.com/sells-group/docmark/internal/textrepair"
	"github.com/sells-group/docmark/pkg/anthropic"
)

const formatSystemPrompt = `You are a document formatting specialist. You convert raw extracted document text into clean, well-structured markdown. You never invent content: every fact, number, and name in your output must appear in the input. Preserve all information, fix obvious OCR artifacts, and reconstruct table structure where the text implies it.`

const formatPromptTemplate = `Convert the following extracted page text into clean markdown.

Rules:
- Preserve ALL content. Do not summarize, omit, or add anything.
- Use markdown headers for section titles that appear in the text.
- Reconstruct tables as markdown tables when the text has tabular structure.
- Fix obvious OCR character errors only when the intended word is unambiguous.
- Keep amounts, dates, and identifiers exactly as written.

Page %d text:

%s`

// minFormattedLength rejects degenerate LLM output; anything at or below
// this falls back to cleaned raw text.
const minFormattedLength = 20

// Formatter converts raw page text to markdown. When the LLM pass is
// disabled or fails, it degrades to a deterministic cleanup so a document
// is always produced.
type Formatter struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	temp      float64
	enabled   bool
}

// New creates a Formatter. A nil client forces the deterministic fallback
// regardless of cfg.Enabled.
func New(client anthropic.Client, aiCfg config.AnthropicConfig, cfg config.FormatConfig) *Formatter {
	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 8000
	}
	return &Formatter{
		client:    client,
		model:     aiCfg.FormatModel,
		maxTokens: maxTokens,
		temp:      cfg.Temp,
		enabled:   cfg.Enabled && client != nil,
	}
}

// FormatPage returns the markdown section for one page, always prefixed
// with its page header so assembly yields one section per page.
func (f *Formatter) FormatPage(ctx context.Context, page model.PageText) (string, model.TokenUsage) {
	if !f.enabled {
		return f.fallback(page), model.TokenUsage{}
	}

	prompt := fmt.Sprintf(formatPromptTemplate, page.PageNumber, page.RawContent)
	temp := f.temp
	resp, err := f.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       f.model,
		MaxTokens:   f.maxTokens,
		System:      anthropic.BuildCachedSystemBlocks(formatSystemPrompt),
		Messages:    []anthropic.Message{anthropic.NewTextMessage("user", prompt)},
		Temperature: &temp,
	})
	if err != nil {
		zap.L().Warn("format: llm formatting failed, using cleanup fallback",
			zap.Int("page", page.PageNumber),
			zap.Error(err),
		)
		return f.fallback(page), model.TokenUsage{}
	}

	resp.Usage.LogCost(f.model, "format")
	usage := model.TokenUsage{
		InputTokens:         int(resp.Usage.InputTokens),
		OutputTokens:        int(resp.Usage.OutputTokens),
		CacheCreationTokens: int(resp.Usage.CacheCreationInputTokens),
		CacheReadTokens:     int(resp.Usage.CacheReadInputTokens),
	}

	formatted := strings.TrimSpace(resp.Text())
	if len(formatted) <= minFormattedLength {
		zap.L().Warn("format: llm output too short, using cleanup fallback",
			zap.Int("page", page.PageNumber),
			zap.Int("chars", len(formatted)),
		)
		return f.fallback(page), usage
	}

	return withPageHeader(page.PageNumber, formatted), usage
}

// fallback is the deterministic path: page header plus OCR cleanup.
func (f *Formatter) fallback(page model.PageText) string {
	return withPageHeader(page.PageNumber, textrepair.Cleanup(page.RawContent))
}

func withPageHeader(pageNumber int, body string) string {
	header := fmt.Sprintf("## Page %d", pageNumber)
	if strings.HasPrefix(body, header) {
		return body
	}
	return header + "\n\n" + body
}

// AssembleDocument joins page sections into one markdown document with a
// horizontal rule between pages and an optional title heading.
func AssembleDocument(title string, sections []string) string {
	var b strings.Builder
	if title != "" {
		b.WriteString("# ")
		b.WriteString(title)
		b.WriteString("\n\n")
	}
	b.WriteString(strings.Join(sections, "\n\n---\n\n"))
	return b.String()
}
