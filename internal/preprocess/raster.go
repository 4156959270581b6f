package preprocess

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"math"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// Decode decodes a PNG, JPEG, GIF, WebP, BMP or TIFF byte stream.
//
// Returns the decoded image and the registered format name. Any decoder error,
// as well as an image with zero width or height, is reported as ErrDecode.
func Decode(src []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, "", fmt.Errorf("%w: empty %s image", ErrDecode, format)
	}
	return img, format, nil
}

// TargetSize returns the working size for a width x height source so that the
// longer side does not exceed maxDim. The aspect ratio is preserved, each side
// is rounded half away from zero, and the result is never larger than the source
// nor smaller than 1x1.
//
// For example TargetSize(4000, 3000, 1500) returns (1500, 1125).
func TargetSize(width, height, maxDim int) (int, int) {
	longer := width
	if height > longer {
		longer = height
	}
	if longer <= maxDim || longer == 0 {
		return width, height
	}
	scale := float64(maxDim) / float64(longer)
	w := int(math.Round(float64(width) * scale))
	h := int(math.Round(float64(height) * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// Rasterize produces the working RGBA grid for img, bounded to maxDim on the
// longer side. Images that already fit are copied without resampling; larger
// ones are resampled with a bilinear filter.
func Rasterize(img image.Image, maxDim int) *RGBA {
	b := img.Bounds()
	w, h := TargetSize(b.Dx(), b.Dy(), maxDim)

	var nrgba *image.NRGBA
	if w == b.Dx() && h == b.Dy() {
		nrgba = imaging.Clone(img)
	} else {
		nrgba = imaging.Resize(img, w, h, imaging.Linear)
	}
	return RGBAFromImage(nrgba)
}
