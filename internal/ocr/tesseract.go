package ocr

import (
	"context"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Tesseract implements Engine using the gosseract client. A fresh client is
// created per recognition; gosseract clients are not safe for reuse across
// goroutines.
type Tesseract struct {
	language      string
	psm           int
	clientFactory func() *gosseract.Client
}

// NewTesseract creates a Tesseract engine. Empty language defaults to "eng";
// psm <= 0 defaults to automatic page segmentation.
func NewTesseract(language string, psm int) *Tesseract {
	if language == "" {
		language = "eng"
	}
	if psm <= 0 {
		psm = 3
	}
	return &Tesseract{
		language:      language,
		psm:           psm,
		clientFactory: gosseract.NewClient,
	}
}

// Recognize preprocesses the page image and runs Tesseract over it.
func (t *Tesseract) Recognize(ctx context.Context, pngData []byte) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	processed, err := Preprocess(pngData)
	if err != nil {
		// Recognition can still work on the raw render.
		zap.L().Warn("ocr: image preprocessing failed, using raw image", zap.Error(err))
		processed = pngData
	}

	c := t.clientFactory()
	defer c.Close() //nolint:errcheck

	if err := c.SetImageFromBytes(processed); err != nil {
		return "", eris.Wrap(err, "ocr: set image")
	}
	if err := c.SetLanguage(t.language); err != nil {
		return "", eris.Wrapf(err, "ocr: set language %s", t.language)
	}
	if err := c.SetPageSegMode(gosseract.PageSegMode(t.psm)); err != nil {
		return "", eris.Wrapf(err, "ocr: set page segmentation mode %d", t.psm)
	}

	text, err := c.Text()
	if err != nil {
		return "", eris.Wrap(err, "ocr: recognize text")
	}
	return strings.TrimSpace(text), nil
}
