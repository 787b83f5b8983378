// Package pdf wraps go-fitz (MuPDF) as the page source for the extraction
// cascade: native text layer access plus DPI-controlled page rendering.
package pdf

import (
	"bytes"
	"image/png"

	"github.com/gen2brain/go-fitz"
	"github.com/rotisserie/eris"
)

// Document is an open PDF. Not safe for concurrent use; MuPDF contexts are
// single-threaded.
type Document struct {
	doc  *fitz.Document
	path string
}

// Open opens a PDF from disk. Failure here is the one hard error the
// document driver surfaces to its caller.
func Open(path string) (*Document, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, eris.Wrapf(err, "pdf: open %s", path)
	}
	return &Document{doc: doc, path: path}, nil
}

// OpenBytes opens a PDF held in memory (used by the HTTP conversion server).
func OpenBytes(data []byte) (*Document, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, eris.Wrap(err, "pdf: open from memory")
	}
	return &Document{doc: doc, path: "(memory)"}, nil
}

// Path returns the path the document was opened from.
func (d *Document) Path() string { return d.path }

// NumPages returns the page count.
func (d *Document) NumPages() int { return d.doc.NumPage() }

// Metadata returns the document title and author, either may be empty.
func (d *Document) Metadata() (title, author string) {
	meta := d.doc.Metadata()
	return meta["title"], meta["author"]
}

// Text returns the native text layer of the given 1-indexed page. May be
// empty for scanned pages.
func (d *Document) Text(pageNumber int) (string, error) {
	if err := d.checkPage(pageNumber); err != nil {
		return "", err
	}
	text, err := d.doc.Text(pageNumber - 1)
	if err != nil {
		return "", eris.Wrapf(err, "pdf: extract text from page %d of %s", pageNumber, d.path)
	}
	return text, nil
}

// RenderPNG rasterizes the given 1-indexed page at the requested DPI and
// returns PNG bytes.
func (d *Document) RenderPNG(pageNumber, dpi int) ([]byte, error) {
	if err := d.checkPage(pageNumber); err != nil {
		return nil, err
	}
	img, err := d.doc.ImageDPI(pageNumber-1, float64(dpi))
	if err != nil {
		return nil, eris.Wrapf(err, "pdf: render page %d of %s", pageNumber, d.path)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, eris.Wrapf(err, "pdf: encode page %d", pageNumber)
	}
	return buf.Bytes(), nil
}

// Close releases the underlying MuPDF document.
func (d *Document) Close() error {
	return d.doc.Close()
}

func (d *Document) checkPage(pageNumber int) error {
	if pageNumber < 1 || pageNumber > d.doc.NumPage() {
		return eris.Errorf("pdf: page %d out of range (document has %d pages)", pageNumber, d.doc.NumPage())
	}
	return nil
}
