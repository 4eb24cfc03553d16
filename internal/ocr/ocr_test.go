package ocr

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanLines(t *testing.T) {
	raw := "  Tomato Sauce  \n" +
		"Basil\n" +
		"ab\n" +
		"©|~ Sugar 20% ~|©\n" +
		"\n" +
		"Salt, Pepper (dried)\n"

	lines := cleanLines(raw)

	assert.Equal(t, []string{
		"Tomato Sauce",
		"Basil",
		" Sugar 20% ",
		"Salt, Pepper (dried)",
	}, lines)
}

func TestCleanLines_DropsShortFragments(t *testing.T) {
	assert.Empty(t, cleanLines("a\nbc\n|~\n"))
}

func TestCleanLines_KeepsAllowedPunctuation(t *testing.T) {
	lines := cleanLines("Vitamin B12 (0.5%), Iron\n")
	assert.Equal(t, []string{"Vitamin B12 (0.5%), Iron"}, lines)
}

func TestPreprocess_Binarizes(t *testing.T) {
	// A gradient image must come out pure black and white.
	src := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			v := uint8(x * 16)
			src.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	var buf bytes.Buffer
	assert.NoError(t, png.Encode(&buf, src))

	out, err := preprocess(buf.Bytes())
	assert.NoError(t, err)

	bounds := out.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := out.At(x, y).RGBA()
			gray := uint8(r >> 8)
			assert.True(t, gray == 0 || gray == 255, "pixel (%d,%d) not binarized: %d", x, y, gray)
			assert.Equal(t, r, g)
			assert.Equal(t, g, b)
		}
	}
}

func TestPreprocess_RejectsCorruptImage(t *testing.T) {
	_, err := preprocess([]byte{0xde, 0xad, 0xbe, 0xef})
	assert.Error(t, err)
}

func TestExtract_CorruptImageReportsError(t *testing.T) {
	e := NewExtractor()
	result := e.Extract(context.Background(), []byte("definitely not an image"))

	assert.Equal(t, "error", result.Status)
	assert.NotEmpty(t, result.Message)
	assert.Empty(t, result.Candidates)
	assert.NotNil(t, result.Candidates)
}
