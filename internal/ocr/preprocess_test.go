package ocr

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPreprocess_Binarizes(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for x := 0; x < 10; x++ {
		for y := 0; y < 10; y++ {
			if x < 5 {
				src.Set(x, y, color.White)
			} else {
				src.Set(x, y, color.Black)
			}
		}
	}

	out, err := Preprocess(encodePNG(t, src))
	require.NoError(t, err)

	decoded, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 10, decoded.Bounds().Dx())

	// Every pixel is forced to pure black or pure white.
	for x := 0; x < 10; x++ {
		for y := 0; y < 10; y++ {
			gray := color.GrayModel.Convert(decoded.At(x, y)).(color.Gray)
			assert.True(t, gray.Y == 0 || gray.Y == 255, "pixel (%d,%d) = %d", x, y, gray.Y)
		}
	}
}

func TestPreprocess_InvalidImage(t *testing.T) {
	_, err := Preprocess([]byte("not a png"))
	assert.Error(t, err)
}

func TestScaleToFit_Downscales(t *testing.T) {
	big := image.NewRGBA(image.Rect(0, 0, 5000, 100))

	out := scaleToFit(big, 4000)
	assert.Equal(t, 4000, out.Bounds().Dx())
	assert.Equal(t, 80, out.Bounds().Dy())
}

func TestScaleToFit_TallImage(t *testing.T) {
	tall := image.NewRGBA(image.Rect(0, 0, 100, 5000))

	out := scaleToFit(tall, 4000)
	assert.Equal(t, 4000, out.Bounds().Dy())
	assert.Equal(t, 80, out.Bounds().Dx())
}

func TestScaleToFit_SmallImagePassesThrough(t *testing.T) {
	small := image.NewRGBA(image.Rect(0, 0, 200, 300))
	assert.Equal(t, small, scaleToFit(small, 4000))
}
