package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/docmark/internal/config"
)

func TestNewEngine_Tesseract(t *testing.T) {
	eng, err := NewEngine(config.OCRConfig{Provider: "tesseract", Language: "eng", PSM: 3})
	require.NoError(t, err)
	assert.IsType(t, &Tesseract{}, eng)
}

func TestNewEngine_DefaultProvider(t *testing.T) {
	eng, err := NewEngine(config.OCRConfig{})
	require.NoError(t, err)
	assert.IsType(t, &Tesseract{}, eng)
}

func TestNewEngine_UnknownProvider(t *testing.T) {
	_, err := NewEngine(config.OCRConfig{Provider: "textract"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestNewTesseract_Defaults(t *testing.T) {
	eng := NewTesseract("", 0)
	assert.Equal(t, "eng", eng.language)
	assert.Equal(t, 3, eng.psm)
}
