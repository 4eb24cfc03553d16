package vision

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func solidImage(w, h int, c color.NRGBA) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestPrepare_CropsToInputSize(t *testing.T) {
	for _, dims := range [][2]int{{640, 480}, {480, 640}, {256, 256}, {1000, 300}} {
		img := prepare(solidImage(dims[0], dims[1], color.NRGBA{R: 128, G: 128, B: 128, A: 255}))
		assert.Equal(t, inputSize, img.Bounds().Dx(), "width for %v", dims)
		assert.Equal(t, inputSize, img.Bounds().Dy(), "height for %v", dims)
	}
}

func TestNormalizePixels_ImageNetStatistics(t *testing.T) {
	img := prepare(solidImage(300, 300, color.NRGBA{R: 255, G: 0, B: 127, A: 255}))
	pixels := normalizePixels(img)

	// Channel order is RGB and each channel is (v/255 - mean) / std.
	assert.InDelta(t, (1.0-0.485)/0.229, pixels[0][0][0][0], 0.02)
	assert.InDelta(t, (0.0-0.456)/0.224, pixels[0][0][0][1], 0.02)
	assert.InDelta(t, (127.0/255.0-0.406)/0.225, pixels[0][0][0][2], 0.02)

	// Center pixel matches the corner: no spatial variation for a solid image.
	assert.InDelta(t, pixels[0][0][0][0], pixels[0][112][112][0], 0.02)
}

func TestNormalizePixels_Deterministic(t *testing.T) {
	img := prepare(solidImage(512, 320, color.NRGBA{R: 40, G: 90, B: 200, A: 255}))
	first := normalizePixels(img)
	second := normalizePixels(img)
	assert.Equal(t, first, second)
}

func TestLabelFor_SynthesizedWhenOutOfRange(t *testing.T) {
	c := &Classifier{classNames: []string{"Tomato", "Potato"}}

	assert.Equal(t, "Tomato", c.labelFor(0))
	assert.Equal(t, "Potato", c.labelFor(1))
	assert.Equal(t, "Class_7", c.labelFor(7))
	assert.Equal(t, "Class_-1", c.labelFor(-1))

	empty := &Classifier{}
	assert.Equal(t, "Class_0", empty.labelFor(0))
}

func TestSoftmax(t *testing.T) {
	probs := softmax([]float32{1, 2, 3})

	var sum float32
	for _, p := range probs {
		sum += p
	}
	assert.InDelta(t, 1.0, float64(sum), 1e-5)
	assert.True(t, probs[2] > probs[1] && probs[1] > probs[0])

	// Large scores must not overflow.
	probs = softmax([]float32{1000, 1000})
	assert.InDelta(t, 0.5, float64(probs[0]), 1e-5)
}

func TestArgmax(t *testing.T) {
	assert.Equal(t, 2, argmax([]float32{0.1, 0.2, 0.6, 0.1}))
	assert.Equal(t, 0, argmax([]float32{0.5, 0.5}))
}
