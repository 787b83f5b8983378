package format

import (
	"bytes"

	"github.com/rotisserie/eris"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var previewMarkdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// RenderHTML converts a markdown document to HTML for the server's preview
// endpoint. GFM extensions are required for the table syntax the formatter
// emits.
func RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := previewMarkdown.Convert([]byte(markdown), &buf); err != nil {
		return "", eris.Wrap(err, "format: render html")
	}
	return buf.String(), nil
}
