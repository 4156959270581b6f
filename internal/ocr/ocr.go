package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
)

// ErrEmptyRegion reports a region that does not overlap the image.
var ErrEmptyRegion = errors.New("region does not overlap the image")

// Box is a word bounding box in pixel coordinates.
type Box struct {
	X0 int `json:"x0"` // Left edge
	Y0 int `json:"y0"` // Top edge
	X1 int `json:"x1"` // Right edge
	Y1 int `json:"y1"` // Bottom edge
}

// Word is one recognized word.
type Word struct {
	Text string `json:"text"`

	// Confidence is the engine's certainty, from 0 to 100.
	Confidence float64 `json:"confidence"`

	Box Box `json:"bbox"`
}

// Result is the outcome of recognizing one image.
type Result struct {
	// Text is all recognized text with the engine's spacing and newlines.
	Text string `json:"text"`

	// Words may be empty when the engine could not report word boxes; Text is
	// still set in that case.
	Words []Word `json:"words"`
}

// Recognizer extracts text from an image.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (*Result, error)
}

// EngineInfo describes the backend behind a Recognizer.
type EngineInfo struct {
	Available      bool     `json:"available"`
	Backend        string   `json:"backend"`
	Version        string   `json:"version,omitempty"`
	Language       string   `json:"language"`
	Languages      []string `json:"languages,omitempty"`
	TessdataPrefix string   `json:"tessdata_prefix,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// Describer is implemented by recognizers that can report on their engine.
type Describer interface {
	Info() EngineInfo
}

// Filter returns a copy of r keeping only words with Confidence >= min. Text
// is rebuilt from the kept words, one space apart.
func (r *Result) Filter(min float64) *Result {
	out := &Result{Words: make([]Word, 0, len(r.Words))}
	texts := make([]string, 0, len(r.Words))
	for _, w := range r.Words {
		if w.Confidence < min {
			continue
		}
		out.Words = append(out.Words, w)
		texts = append(texts, w.Text)
	}
	out.Text = strings.Join(texts, " ")
	return out
}

// Offset shifts every word box by (dx, dy) in place.
func (r *Result) Offset(dx, dy int) {
	for i := range r.Words {
		b := &r.Words[i].Box
		b.X0 += dx
		b.Y0 += dy
		b.X1 += dx
		b.Y1 += dy
	}
}

// RecognizeRegion runs rec on the part of img inside rect. The rectangle is
// clipped to the image bounds, and the returned boxes are in the coordinates
// of img rather than of the crop.
func RecognizeRegion(ctx context.Context, rec Recognizer, img image.Image, rect image.Rectangle) (*Result, error) {
	rect = rect.Intersect(img.Bounds())
	if rect.Empty() {
		return nil, ErrEmptyRegion
	}

	cropped := imaging.Crop(img, rect)
	res, err := rec.Recognize(ctx, cropped)
	if err != nil {
		return nil, fmt.Errorf("failed to recognize region %v: %w", rect, err)
	}
	res.Offset(rect.Min.X, rect.Min.Y)
	return res, nil
}
