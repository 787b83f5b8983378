package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/docmark/internal/model"
	"github.com/sells-group/docmark/internal/pipeline"
)

func TestCollectPDFs_ExpandsDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pdf"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.PDF"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	paths, err := collectPDFs([]string{dir})
	require.NoError(t, err)
	assert.Len(t, paths, 2)
	for _, p := range paths {
		assert.Contains(t, []string{"a.pdf", "b.PDF"}, filepath.Base(p))
	}
}

func TestCollectPDFs_FilesPassThrough(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "doc.pdf")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	paths, err := collectPDFs([]string{file})
	require.NoError(t, err)
	assert.Equal(t, []string{file}, paths)
}

func TestCollectPDFs_MissingArg(t *testing.T) {
	_, err := collectPDFs([]string{"/nonexistent/path"})
	assert.Error(t, err)
}

func TestFormatBatchSummary(t *testing.T) {
	outcomes := []pipeline.BatchOutcome{
		{
			Path: "/docs/good.pdf",
			Result: &model.DocumentResult{
				Pages:           []model.PageText{{PageNumber: 1}},
				VisionCallsUsed: 1,
				Context:         model.DocumentContext{Category: "insurance"},
				ProcessingTime:  2 * time.Second,
			},
		},
		{Path: "/docs/bad.pdf", Err: eris.New("open failed")},
	}

	var buf bytes.Buffer
	formatBatchSummary(&buf, outcomes)

	out := buf.String()
	assert.Contains(t, out, "good.pdf")
	assert.Contains(t, out, "insurance")
	assert.Contains(t, out, "bad.pdf")
	assert.Contains(t, out, "failed")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "12345678", truncateID("123456789abcdef"))
	assert.Equal(t, "short", truncateID("short"))
}
