package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.10, cfg.Extraction.CorruptionThreshold)
	assert.Equal(t, 100, cfg.Extraction.MaxVisionCalls)
	assert.Equal(t, 300, cfg.Extraction.DPI)
	assert.Equal(t, 10, cfg.Extraction.MinAnalyzableLength)
	assert.Equal(t, 30, cfg.Extraction.MinNativeLength)
	assert.Equal(t, 30, cfg.Extraction.MinVisionLength)
	assert.Equal(t, 100, cfg.Extraction.MinContentLength)

	assert.Equal(t, "tesseract", cfg.OCR.Provider)
	assert.Equal(t, "eng", cfg.OCR.Language)
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.Anthropic.VisionModel)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Batch.MaxConcurrentDocuments)
	assert.True(t, cfg.Format.Enabled)
	assert.Equal(t, "docmark.db", cfg.Store.Path)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DOCMARK_EXTRACTION_DPI", "150")
	t.Setenv("DOCMARK_ANTHROPIC_KEY", "sk-test")
	t.Setenv("DOCMARK_CLASSIFY_CATEGORIES_FILE", "/etc/docmark/categories.yaml")
	t.Setenv("DOCMARK_EXTRACTION_MAX_VISION_CALLS", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 150, cfg.Extraction.DPI)
	assert.Equal(t, "sk-test", cfg.Anthropic.Key)
	assert.Equal(t, "/etc/docmark/categories.yaml", cfg.Classify.CategoriesFile)
	assert.Equal(t, 5, cfg.Extraction.MaxVisionCalls)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
extraction:
  corruption_threshold: 0.25
  dpi: 200
ocr:
  language: deu
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	t.Chdir(dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.25, cfg.Extraction.CorruptionThreshold)
	assert.Equal(t, 200, cfg.Extraction.DPI)
	assert.Equal(t, "deu", cfg.OCR.Language)
	// Untouched keys keep defaults.
	assert.Equal(t, 100, cfg.Extraction.MaxVisionCalls)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
}

func TestInitLogger_BadLevel(t *testing.T) {
	assert.Error(t, InitLogger(LogConfig{Level: "shouting", Format: "json"}))
}
