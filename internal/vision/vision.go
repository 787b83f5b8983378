// Package vision extracts page text from rendered page images using a
// vision-capable Claude model.
package vision

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/docmark/internal/config"
	"github.com/sells-group/docmark/internal/model"
	"github.com/sells-group/docmark/pkg/anthropic"
)

// Extractor turns a rendered page image plus prompt context into text.
// Implementations may be slow and may fail; the cascade treats failures as
// a signal to fall through to traditional OCR.
type Extractor interface {
	ExtractPage(ctx context.Context, pngData []byte, prompt string) (string, model.TokenUsage, error)
}

// Claude implements Extractor against the Anthropic API, rate limited so a
// large scanned document cannot burst the API.
type Claude struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	limiter   *rate.Limiter
}

// NewClaude creates a Claude vision extractor.
func NewClaude(client anthropic.Client, aiCfg config.AnthropicConfig, vCfg config.VisionConfig) *Claude {
	rps := vCfg.RatePerSecond
	if rps <= 0 {
		rps = 0.5
	}
	burst := vCfg.Burst
	if burst <= 0 {
		burst = 1
	}
	maxTokens := int64(vCfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 8000
	}
	return &Claude{
		client:    client,
		model:     aiCfg.VisionModel,
		maxTokens: maxTokens,
		limiter:   rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// ExtractPage sends the page image with the contextual prompt and returns
// the transcribed text. Temperature is pinned to zero so identical
// image+context pairs produce stable output.
func (c *Claude) ExtractPage(ctx context.Context, pngData []byte, prompt string) (string, model.TokenUsage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", model.TokenUsage{}, eris.Wrap(err, "vision: rate limit wait")
	}

	temp := 0.0
	resp, err := c.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		System:      anthropic.BuildCachedSystemBlocks(systemPrompt),
		Messages:    []anthropic.Message{anthropic.NewImageMessage("user", "image/png", pngData, prompt)},
		Temperature: &temp,
	})
	if err != nil {
		return "", model.TokenUsage{}, eris.Wrap(err, "vision: extract page")
	}

	resp.Usage.LogCost(c.model, "vision")
	usage := model.TokenUsage{
		InputTokens:         int(resp.Usage.InputTokens),
		OutputTokens:        int(resp.Usage.OutputTokens),
		CacheCreationTokens: int(resp.Usage.CacheCreationInputTokens),
		CacheReadTokens:     int(resp.Usage.CacheReadInputTokens),
	}

	text := strings.TrimSpace(resp.Text())
	zap.L().Debug("vision: page extracted",
		zap.Int("chars", len(text)),
		zap.Int64("output_tokens", resp.Usage.OutputTokens),
	)
	return text, usage, nil
}
