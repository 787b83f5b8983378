// Package extract runs the per-page extraction cascade: native PDF text,
// then the vision model when the corruption scorer escalates, then
// traditional OCR as the last tier. Every decision is carried in the
// returned page value rather than signaled through errors.
package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/docmark/internal/config"
	"github.com/sells-group/docmark/internal/corruption"
	"github.com/sells-group/docmark/internal/model"
	"github.com/sells-group/docmark/internal/ocr"
	"github.com/sells-group/docmark/internal/textrepair"
	"github.com/sells-group/docmark/internal/vision"
)

// PageSource yields native text and rendered images for document pages.
// Satisfied by pdf.Document.
type PageSource interface {
	Text(pageNumber int) (string, error)
	RenderPNG(pageNumber, dpi int) ([]byte, error)
}

// Session carries the per-document extraction state: the vision call
// budget, the page cache, the document context from classification, and
// accumulated token usage. Create one per document.
type Session struct {
	cfg      config.ExtractionConfig
	detector *corruption.Detector
	source   PageSource
	vision   vision.Extractor
	ocr      ocr.Engine
	docCtx   model.DocumentContext

	budget *Budget
	cache  *Cache
	usage  model.TokenUsage
}

// NewSession creates a session for one document. store may be nil to keep
// the page cache memory-only.
func NewSession(cfg config.ExtractionConfig, source PageSource, vis vision.Extractor, engine ocr.Engine, docCtx model.DocumentContext, store PageStore) *Session {
	det := corruption.DefaultConfig()
	if cfg.CorruptionThreshold > 0 {
		det.Threshold = cfg.CorruptionThreshold
	}
	if cfg.MinAnalyzableLength > 0 {
		det.MinAnalyzableLength = cfg.MinAnalyzableLength
	}
	if cfg.MinContentLength > 0 {
		det.MinContentLength = cfg.MinContentLength
	}
	if cfg.MinSubstantialLines > 0 {
		det.MinSubstantialLines = cfg.MinSubstantialLines
	}
	if cfg.SubstantialLineLength > 0 {
		det.SubstantialLineLength = cfg.SubstantialLineLength
	}

	return &Session{
		cfg:      cfg,
		detector: corruption.NewDetector(det),
		source:   source,
		vision:   vis,
		ocr:      engine,
		docCtx:   docCtx,
		budget:   NewBudget(cfg.MaxVisionCalls),
		cache:    NewCache(store),
	}
}

// VisionCallsUsed returns how many vision calls the session has spent.
func (s *Session) VisionCallsUsed() int { return s.budget.Used() }

// Usage returns the accumulated token usage.
func (s *Session) Usage() model.TokenUsage { return s.usage }

// ExtractPage runs the cascade for one page. The returned error is reserved
// for conditions that leave no text to return at all, such as a failed
// render on a page with no usable native text; every tier fallback is an
// ordinary result.
func (s *Session) ExtractPage(ctx context.Context, pageNumber int) (model.PageText, error) {
	native, err := s.source.Text(pageNumber)
	if err != nil {
		zap.L().Warn("extract: native text read failed",
			zap.Int("page", pageNumber),
			zap.Error(err),
		)
		native = ""
	}

	verdict := s.detector.Decide(native, s.budget.Used(), s.budget.Max())
	nativeValid := len(strings.TrimSpace(native)) >= s.cfg.MinNativeLength

	if !verdict.Escalate && nativeValid {
		zap.L().Debug("extract: native text accepted",
			zap.Int("page", pageNumber),
			zap.Float64("score", verdict.Score),
		)
		return model.PageText{
			PageNumber:       pageNumber,
			RawContent:       textrepair.Cleanup(native),
			Source:           model.SourceNativeText,
			CorruptionReason: verdict.Reason(),
		}, nil
	}

	png, err := s.source.RenderPNG(pageNumber, s.cfg.DPI)
	if err != nil {
		if nativeValid {
			zap.L().Warn("extract: render failed, falling back to native text",
				zap.Int("page", pageNumber),
				zap.Error(err),
			)
			return model.PageText{
				PageNumber:       pageNumber,
				RawContent:       textrepair.Cleanup(native),
				Source:           model.SourceNativeText,
				CorruptionReason: verdict.Reason(),
			}, nil
		}
		return model.PageText{}, eris.Wrapf(err, "extract: render page %d", pageNumber)
	}

	fingerprint := Fingerprint(native, png)
	if text, source, ok := s.cache.Get(ctx, fingerprint); ok {
		// An OCR-sourced entry is only a fallback. While budget remains,
		// skip it and let vision try for a better result; a vision success
		// overwrites the entry at the same fingerprint.
		if source != model.SourceTraditionalOCR || !s.budget.CanCall() {
			zap.L().Debug("extract: cache hit",
				zap.Int("page", pageNumber),
				zap.String("fingerprint", fingerprint),
			)
			return model.PageText{
				PageNumber:       pageNumber,
				RawContent:       text,
				Source:           source,
				CorruptionReason: "cached_result",
			}, nil
		}
	}

	if s.budget.CanCall() {
		if page, ok := s.tryVision(ctx, pageNumber, native, png, fingerprint, verdict); ok {
			return page, nil
		}
		// Vision failed or produced too little. A corrupted-but-valid native
		// text beats a second image pass through a weaker engine.
		if nativeValid {
			return model.PageText{
				PageNumber:       pageNumber,
				RawContent:       textrepair.Cleanup(native),
				Source:           model.SourceNativeText,
				CorruptionReason: verdict.Reason(),
			}, nil
		}
	}

	return s.tryOCR(ctx, pageNumber, png, fingerprint), nil
}

// tryVision spends one budgeted vision call. Budget is recorded and the
// result cached only when the response passes the minimum-length gate.
func (s *Session) tryVision(ctx context.Context, pageNumber int, native string, png []byte, fingerprint string, verdict corruption.Verdict) (model.PageText, bool) {
	prompt := vision.BuildPrompt(s.docCtx, pageNumber, native)

	text, usage, err := s.vision.ExtractPage(ctx, png, prompt)
	s.usage.Add(usage)
	if err != nil {
		zap.L().Warn("extract: vision call failed",
			zap.Int("page", pageNumber),
			zap.Error(err),
		)
		return model.PageText{}, false
	}

	if len(strings.TrimSpace(text)) < s.cfg.MinVisionLength {
		zap.L().Warn("extract: vision result below minimum length",
			zap.Int("page", pageNumber),
			zap.Int("chars", len(strings.TrimSpace(text))),
		)
		return model.PageText{}, false
	}

	s.budget.RecordCall()
	s.cache.Put(ctx, fingerprint, text, model.SourceVisionModel)

	zap.L().Info("extract: vision extraction succeeded",
		zap.Int("page", pageNumber),
		zap.Int("vision_calls_used", s.budget.Used()),
		zap.String("reason", verdict.Reason()),
	)
	return model.PageText{
		PageNumber:       pageNumber,
		RawContent:       text,
		Source:           model.SourceVisionModel,
		CorruptionReason: verdict.Reason(),
	}, true
}

// tryOCR is the terminal tier. It never returns an error: a failed or empty
// recognition yields a placeholder page so document assembly keeps one
// section per page.
func (s *Session) tryOCR(ctx context.Context, pageNumber int, png []byte, fingerprint string) model.PageText {
	text, err := s.ocr.Recognize(ctx, png)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			zap.L().Error("extract: ocr failed",
				zap.Int("page", pageNumber),
				zap.Error(err),
			)
		}
		return model.PageText{
			PageNumber:       pageNumber,
			RawContent:       fmt.Sprintf("OCR extraction failed for page %d", pageNumber),
			Source:           model.SourceTraditionalOCR,
			CorruptionReason: "ocr_failed",
		}
	}

	cleaned := textrepair.Cleanup(text)
	s.cache.Put(ctx, fingerprint, cleaned, model.SourceTraditionalOCR)
	return model.PageText{
		PageNumber:       pageNumber,
		RawContent:       cleaned,
		Source:           model.SourceTraditionalOCR,
		CorruptionReason: "ocr_fallback",
	}
}
