// Package ocr provides the traditional OCR fallback engine for the
// extraction cascade.
package ocr

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/docmark/internal/config"
)

// Engine recognizes text in a rendered page image.
type Engine interface {
	Recognize(ctx context.Context, pngData []byte) (string, error)
}

// NewEngine creates an Engine based on config.
func NewEngine(cfg config.OCRConfig) (Engine, error) {
	switch cfg.Provider {
	case "tesseract", "":
		return NewTesseract(cfg.Language, cfg.PSM), nil
	default:
		return nil, eris.Errorf("ocr: unknown provider %q", cfg.Provider)
	}
}
