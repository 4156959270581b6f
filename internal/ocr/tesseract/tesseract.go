// Package tesseract implements ocr.Recognizer with the Tesseract engine via
// gosseract.
//
// Tesseract and its language data must be installed:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// Language data is looked up under Options.TessdataPrefix, or the
// TESSDATA_PREFIX environment variable when the option is empty.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"slices"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/winelabel-mcp/internal/ocr"
)

// DefaultLanguage is used when Options.Language is empty.
const DefaultLanguage = "eng"

// backend names the engine in EngineInfo.
const backend = "gosseract"

// Options configures a Recognizer.
type Options struct {
	// Language is a Tesseract language code such as "eng", "fra" or "deu+ita".
	Language string

	// TessdataPrefix is the directory holding *.traineddata files.
	TessdataPrefix string
}

// Recognizer runs Tesseract on images. A gosseract client is not safe for
// concurrent use, so every call creates and closes its own; the Recognizer
// itself may be shared.
type Recognizer struct {
	opts Options
}

var (
	_ ocr.Recognizer = (*Recognizer)(nil)
	_ ocr.Describer  = (*Recognizer)(nil)
)

// New returns a Recognizer. It does not touch the engine; use Info to check
// that Tesseract is installed.
func New(opts Options) *Recognizer {
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}
	return &Recognizer{opts: opts}
}

// Recognize performs OCR on img and returns the text and word boxes.
//
// Word boxes are read at the RIL_WORD level and empty words are dropped. If
// the engine cannot report boxes, the text is still returned with no words.
// The context is checked before the engine starts; a running recognition
// cannot be interrupted.
func (r *Recognizer) Recognize(ctx context.Context, img image.Image) (*ocr.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image for OCR: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if r.opts.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(r.opts.TessdataPrefix); err != nil {
			return nil, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}
	if err := client.SetLanguage(r.opts.Language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return &ocr.Result{Text: text, Words: []ocr.Word{}}, nil
	}
	return &ocr.Result{Text: text, Words: wordsFromBoxes(boxes)}, nil
}

func wordsFromBoxes(boxes []gosseract.BoundingBox) []ocr.Word {
	words := make([]ocr.Word, 0, len(boxes))
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		words = append(words, ocr.Word{
			Text:       box.Word,
			Confidence: box.Confidence,
			Box: ocr.Box{
				X0: box.Box.Min.X,
				Y0: box.Box.Min.Y,
				X1: box.Box.Max.X,
				Y1: box.Box.Max.Y,
			},
		})
	}
	return words
}

// Version returns the installed Tesseract version.
func Version() string {
	return gosseract.Version()
}

// Info reports whether the engine is usable with the configured language.
func (r *Recognizer) Info() ocr.EngineInfo {
	info := ocr.EngineInfo{
		Backend:        backend,
		Version:        Version(),
		Language:       r.opts.Language,
		TessdataPrefix: r.opts.TessdataPrefix,
	}

	langs, err := gosseract.GetAvailableLanguages()
	if err != nil {
		info.Error = fmt.Sprintf("failed to list languages: %v", err)
		return info
	}
	info.Languages = langs

	if info.Version == "" {
		info.Error = "tesseract version unavailable"
		return info
	}
	if r.opts.TessdataPrefix == "" {
		for _, lang := range strings.Split(r.opts.Language, "+") {
			if !slices.Contains(langs, lang) {
				info.Error = fmt.Sprintf("language %q is not installed", lang)
				return info
			}
		}
	}
	info.Available = true
	return info
}
