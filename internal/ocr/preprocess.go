package ocr

import (
	"bytes"
	"image"
	"image/png"

	"github.com/rotisserie/eris"
	xdraw "golang.org/x/image/draw"
)

// maxOCRDimension caps the longest side of the image handed to Tesseract.
// High-DPI renders past this size slow recognition without improving it.
const maxOCRDimension = 4000

// binarizeFactor scales the mean luminance to get the threshold; pixels
// above it become white, the rest black.
const binarizeFactor = 0.85

// Preprocess converts a rendered page to a binarized grayscale PNG:
// downscale oversized renders, convert to gray, then threshold at 85% of
// the mean luminance.
func Preprocess(pngData []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(pngData))
	if err != nil {
		return nil, eris.Wrap(err, "ocr: decode page image")
	}

	src = scaleToFit(src, maxOCRDimension)

	bounds := src.Bounds()
	gray := image.NewGray(bounds)
	xdraw.Draw(gray, bounds, src, bounds.Min, xdraw.Src)

	// Mean luminance threshold.
	var sum uint64
	for _, p := range gray.Pix {
		sum += uint64(p)
	}
	if len(gray.Pix) == 0 {
		return nil, eris.New("ocr: empty page image")
	}
	threshold := uint8(float64(sum/uint64(len(gray.Pix))) * binarizeFactor)

	for i, p := range gray.Pix {
		if p > threshold {
			gray.Pix[i] = 255
		} else {
			gray.Pix[i] = 0
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return nil, eris.Wrap(err, "ocr: encode preprocessed image")
	}
	return buf.Bytes(), nil
}

// scaleToFit downscales img so its longest side is at most max pixels,
// preserving aspect ratio. Images already within bounds pass through.
func scaleToFit(img image.Image, max int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= max && h <= max {
		return img
	}

	scale := float64(max) / float64(w)
	if h > w {
		scale = float64(max) / float64(h)
	}
	dst := image.NewRGBA(image.Rect(0, 0, int(float64(w)*scale), int(float64(h)*scale)))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}
