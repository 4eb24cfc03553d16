package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
	log "github.com/sirupsen/logrus"
)

// Result holds the outcome of a text-extraction run. A failed run is reported
// through Status, never as a Go error, so the pipeline can always continue.
type Result struct {
	Status        string   `json:"status"`
	Message       string   `json:"message,omitempty"`
	RawTextLength int      `json:"raw_text_length"`
	Candidates    []string `json:"candidates"`
}

const (
	// Luminance below this is forced to black during binarization.
	binarizeThreshold = 140
	contrastFactor    = 2.0
)

// Extractor runs Tesseract OCR over preprocessed images. It holds no state
// between invocations; each call uses a fresh client.
type Extractor struct {
	newClient func() *gosseract.Client
}

// NewExtractor constructs a Tesseract-backed text extractor.
func NewExtractor() *Extractor {
	return &Extractor{newClient: gosseract.NewClient}
}

// Extract runs the full OCR stage on raw image bytes. It is a pure function
// of the image and never fails outward: corrupt images and engine errors are
// reported in the result status.
func (e *Extractor) Extract(ctx context.Context, imageData []byte) *Result {
	raw, err := e.recognize(ctx, imageData)
	if err != nil {
		log.Warnf("ocr: extraction failed: %v", err)
		return &Result{Status: "error", Message: err.Error(), Candidates: []string{}}
	}

	return &Result{
		Status:        "success",
		RawTextLength: len(raw),
		Candidates:    cleanLines(raw),
	}
}

func (e *Extractor) recognize(ctx context.Context, imageData []byte) (string, error) {
	prepared, err := preprocess(imageData)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, prepared); err != nil {
		return "", fmt.Errorf("encode preprocessed image: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := e.newClient()
	defer c.Close()

	if err := c.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	if err := c.SetLanguage("eng"); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	// Sparse text layout: find as much text as possible in no particular order.
	if err := c.SetPageSegMode(gosseract.PSM_SPARSE_TEXT); err != nil {
		return "", fmt.Errorf("set page segmentation mode: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return text, nil
}

// preprocess applies the fixed enhancement pipeline: grayscale, contrast,
// sharpen, binarize. Order matters; each step feeds the next.
func preprocess(imageData []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	gray := imaging.Grayscale(img)
	contrasted := imaging.AdjustFunc(gray, scaleContrast)
	sharpened := imaging.Sharpen(contrasted, 1.0)
	return imaging.AdjustFunc(sharpened, binarize), nil
}

// scaleContrast stretches pixel values away from the midpoint by a fixed
// factor, mirroring a PIL-style contrast enhancement of 2.0.
func scaleContrast(c color.NRGBA) color.NRGBA {
	adjust := func(v uint8) uint8 {
		scaled := (float64(v)-128)*contrastFactor + 128
		if scaled < 0 {
			return 0
		}
		if scaled > 255 {
			return 255
		}
		return uint8(scaled)
	}
	return color.NRGBA{R: adjust(c.R), G: adjust(c.G), B: adjust(c.B), A: c.A}
}

// binarize maps every pixel to pure black or pure white, removing grey noise
// and shadows before the engine runs.
func binarize(c color.NRGBA) color.NRGBA {
	if c.R < binarizeThreshold {
		return color.NRGBA{R: 0, G: 0, B: 0, A: c.A}
	}
	return color.NRGBA{R: 255, G: 255, B: 255, A: c.A}
}

var ocrArtifacts = regexp.MustCompile(`[^a-zA-Z0-9(),.% ]`)

// cleanLines sanitizes raw OCR output into candidate ingredient lines,
// keeping only characters that plausibly occur on ingredient labels and
// dropping fragments too short to be words.
func cleanLines(raw string) []string {
	lines := strings.Split(raw, "\n")
	cleaned := []string{}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		line = ocrArtifacts.ReplaceAllString(line, "")
		if len(line) > 2 {
			cleaned = append(cleaned, line)
		}
	}
	return cleaned
}
