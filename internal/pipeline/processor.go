// Package pipeline drives the document conversion flow: open, classify,
// extract page by page through the cascade, format to markdown, assemble,
// and record the run.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/docmark/internal/classify"
	"github.com/sells-group/docmark/internal/config"
	"github.com/sells-group/docmark/internal/extract"
	"github.com/sells-group/docmark/internal/format"
	"github.com/sells-group/docmark/internal/model"
	"github.com/sells-group/docmark/internal/ocr"
	"github.com/sells-group/docmark/internal/pdf"
	"github.com/sells-group/docmark/internal/store"
	"github.com/sells-group/docmark/internal/vision"
	"github.com/sells-group/docmark/pkg/anthropic"
)

// Processor converts PDF documents to markdown. Safe for concurrent use;
// each document gets its own extraction session.
type Processor struct {
	cfg        *config.Config
	vision     vision.Extractor
	ocr        ocr.Engine
	classifier *classify.Classifier
	formatter  *format.Formatter
	store      store.Store
}

// New builds a Processor from configuration. st may be nil to disable run
// records and the persistent page cache.
func New(cfg *config.Config, client anthropic.Client, st store.Store) (*Processor, error) {
	engine, err := ocr.NewEngine(cfg.OCR)
	if err != nil {
		return nil, err
	}

	var categories []classify.Category
	if cfg.Classify.CategoriesFile != "" {
		categories, err = classify.LoadCategories(cfg.Classify.CategoriesFile)
		if err != nil {
			return nil, err
		}
	}

	return &Processor{
		cfg:        cfg,
		vision:     vision.NewClaude(client, cfg.Anthropic, cfg.Vision),
		ocr:        engine,
		classifier: classify.New(categories),
		formatter:  format.New(client, cfg.Anthropic, cfg.Format),
		store:      st,
	}, nil
}

// ProcessDocument converts the PDF at path. Failing to open the document is
// the only hard failure; per-page problems degrade to placeholder sections.
func (p *Processor) ProcessDocument(ctx context.Context, path string) (*model.DocumentResult, error) {
	runID := p.startRun(ctx, path)

	doc, err := pdf.Open(path)
	if err != nil {
		p.failRun(ctx, runID, err)
		return nil, err
	}
	defer doc.Close() //nolint:errcheck

	result, err := p.process(ctx, doc, path)
	if err != nil {
		p.failRun(ctx, runID, err)
		return nil, err
	}

	p.completeRun(ctx, runID, result)
	return result, nil
}

// ProcessBytes converts an in-memory PDF, used by the HTTP server. name is
// a display name for the result, not a filesystem path.
func (p *Processor) ProcessBytes(ctx context.Context, data []byte, name string) (*model.DocumentResult, error) {
	runID := p.startRun(ctx, name)

	doc, err := pdf.OpenBytes(data)
	if err != nil {
		p.failRun(ctx, runID, err)
		return nil, err
	}
	defer doc.Close() //nolint:errcheck

	result, err := p.process(ctx, doc, name)
	if err != nil {
		p.failRun(ctx, runID, err)
		return nil, err
	}
	result.Path = name

	p.completeRun(ctx, runID, result)
	return result, nil
}

func (p *Processor) process(ctx context.Context, doc *pdf.Document, path string) (*model.DocumentResult, error) {
	start := time.Now()
	numPages := doc.NumPages()

	title, _ := doc.Metadata()
	if title == "" {
		title = documentTitle(path)
	}

	docCtx := p.classifyFirstPage(doc)
	zap.L().Info("pipeline: processing document",
		zap.String("path", path),
		zap.Int("pages", numPages),
		zap.String("category", docCtx.Category),
	)

	var pageStore extract.PageStore
	if p.store != nil {
		pageStore = p.store
	}
	session := extract.NewSession(p.cfg.Extraction, doc, p.vision, p.ocr, docCtx, pageStore)

	result := &model.DocumentResult{
		Path:    path,
		Title:   title,
		Context: docCtx,
		Pages:   make([]model.PageText, 0, numPages),
	}

	sections := make([]string, 0, numPages)
	for pageNumber := 1; pageNumber <= numPages; pageNumber++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := session.ExtractPage(ctx, pageNumber)
		if err != nil {
			zap.L().Error("pipeline: page extraction failed",
				zap.String("path", path),
				zap.Int("page", pageNumber),
				zap.Error(err),
			)
			page = model.PageText{
				PageNumber:       pageNumber,
				RawContent:       fmt.Sprintf("Processing failed for page %d", pageNumber),
				Source:           model.SourceNativeText,
				CorruptionReason: "page_error",
			}
		}
		result.Pages = append(result.Pages, page)

		section, usage := p.formatter.FormatPage(ctx, page)
		result.Usage.Add(usage)
		sections = append(sections, section)
	}

	result.Usage.Add(session.Usage())
	result.VisionCallsUsed = session.VisionCallsUsed()
	result.Markdown = format.AssembleDocument(title, sections)
	result.ProcessingTime = time.Since(start)

	zap.L().Info("pipeline: document complete",
		zap.String("path", path),
		zap.Int("pages", numPages),
		zap.Int("vision_calls", result.VisionCallsUsed),
		zap.Duration("elapsed", result.ProcessingTime),
	)
	return result, nil
}

// classifyFirstPage never fails: an unreadable first page yields the
// general context.
func (p *Processor) classifyFirstPage(doc *pdf.Document) model.DocumentContext {
	if doc.NumPages() == 0 {
		return model.GeneralContext()
	}
	firstText, err := doc.Text(1)
	if err != nil {
		zap.L().Warn("pipeline: first page text unavailable, using general context", zap.Error(err))
		return model.GeneralContext()
	}
	return p.classifier.Classify(firstText)
}

// documentTitle derives a display title from the file name.
func documentTitle(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// run record helpers; store failures never block processing.

func (p *Processor) startRun(ctx context.Context, path string) string {
	if p.store == nil {
		return ""
	}
	run, err := p.store.CreateRun(ctx, path)
	if err != nil {
		zap.L().Warn("pipeline: create run record failed", zap.Error(err))
		return ""
	}
	if err := p.store.UpdateRunStatus(ctx, run.ID, model.RunStatusProcessing); err != nil {
		zap.L().Warn("pipeline: update run status failed", zap.Error(err))
	}
	return run.ID
}

func (p *Processor) completeRun(ctx context.Context, runID string, result *model.DocumentResult) {
	if p.store == nil || runID == "" {
		return
	}
	if err := p.store.CompleteRun(ctx, runID, model.ResultFromDocument(result)); err != nil {
		zap.L().Warn("pipeline: complete run record failed", zap.Error(err))
	}
}

func (p *Processor) failRun(ctx context.Context, runID string, cause error) {
	if p.store == nil || runID == "" {
		return
	}
	if err := p.store.FailRun(ctx, runID, cause.Error()); err != nil {
		zap.L().Warn("pipeline: fail run record failed", zap.Error(err))
	}
}
