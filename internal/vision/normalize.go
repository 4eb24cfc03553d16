package vision

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	tf "github.com/tensorflow/tensorflow/tensorflow/go"
)

// Input contract of the pretrained backbone: 224x224 RGB, ImageNet statistics.
const (
	resizeTarget = 256
	inputSize    = 224
)

var (
	imagenetMean = [3]float32{0.485, 0.456, 0.406}
	imagenetStd  = [3]float32{0.229, 0.224, 0.225}
)

// NormalizeImage converts raw image bytes into a [1][224][224][3] float32
// tensor: shortest side resized to 256, center-cropped to 224x224, pixel
// values scaled to [0,1] and normalized per channel with the ImageNet
// statistics the backbone was pretrained on. Deterministic, no augmentation.
func NormalizeImage(imageData []byte) (*tf.Tensor, error) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return tf.NewTensor(normalizePixels(prepare(img)))
}

// prepare resizes the shortest side to 256 and center-crops to the model
// input size. Decoding already yields three-channel pixels for every source
// format via NRGBA conversion.
func prepare(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	if bounds.Dx() < bounds.Dy() {
		img = imaging.Resize(img, resizeTarget, 0, imaging.Lanczos)
	} else {
		img = imaging.Resize(img, 0, resizeTarget, imaging.Lanczos)
	}
	return imaging.CropCenter(img, inputSize, inputSize)
}

func normalizePixels(img *image.NRGBA) [1][inputSize][inputSize][3]float32 {
	var ret [1][inputSize][inputSize][3]float32
	for y := 0; y < inputSize; y++ {
		for x := 0; x < inputSize; x++ {
			px := img.NRGBAAt(x, y)
			channels := [3]uint8{px.R, px.G, px.B}
			for c := 0; c < 3; c++ {
				scaled := float32(channels[c]) / 255.0
				ret[0][y][x][c] = (scaled - imagenetMean[c]) / imagenetStd[c]
			}
		}
	}
	return ret
}
