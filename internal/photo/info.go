package photo

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/winelabel-mcp/internal/preprocess"
)

// thumbnailSize bounds the thumbnail used for the mean color.
const thumbnailSize = 64

// Exposure classes reported in Info.Exposure.
const (
	ExposureDark   = "dark"
	ExposureNormal = "normal"
	ExposureBright = "bright"
)

// Lightness bounds of the normal exposure class (HSL lightness, 0-1).
const (
	darkLightness   = 0.2
	brightLightness = 0.85
)

// Info describes a label photo.
type Info struct {
	// Path is the file the photo was read from.
	Path string `json:"path"`

	// Width and Height are the decoded photo dimensions.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Format is the decoder name: "jpeg", "png", "gif", "webp", "bmp" or "tiff".
	Format string `json:"format"`

	// FileSizeBytes is the size of the file on disk.
	FileSizeBytes int64 `json:"file_size_bytes"`

	// WorkingWidth and WorkingHeight are the grid dimensions after downscaling.
	WorkingWidth  int `json:"working_width"`
	WorkingHeight int `json:"working_height"`

	// MeanColor is the average color as "#rrggbb".
	MeanColor string `json:"mean_color"`

	// Lightness is the HSL lightness of MeanColor, from 0 (black) to 1 (white).
	Lightness float64 `json:"lightness"`

	// Exposure is a coarse class derived from Lightness.
	Exposure string `json:"exposure"`
}

// Describe loads path through cache and reports its metadata. maxDim is the
// pipeline's MaxWorkingDimension and determines the working size.
func Describe(cache *Cache, path string, maxDim int) (*Info, error) {
	data, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	img, format, err := preprocess.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	b := img.Bounds()
	ww, wh := preprocess.TargetSize(b.Dx(), b.Dy(), maxDim)

	mean := MeanColor(img)
	_, _, l := mean.Hsl()

	return &Info{
		Path:          path,
		Width:         b.Dx(),
		Height:        b.Dy(),
		Format:        format,
		FileSizeBytes: int64(len(data)),
		WorkingWidth:  ww,
		WorkingHeight: wh,
		MeanColor:     mean.Hex(),
		Lightness:     l,
		Exposure:      exposureClass(l),
	}, nil
}

// MeanColor averages img over a thumbnail of at most 64x64 pixels. Alpha is
// ignored.
func MeanColor(img image.Image) colorful.Color {
	thumb := imaging.Fit(img, thumbnailSize, thumbnailSize, imaging.Box)
	b := thumb.Bounds()
	n := uint64(b.Dx() * b.Dy())
	if n == 0 {
		return colorful.Color{}
	}

	var r, g, bl uint64
	for y := 0; y < b.Dy(); y++ {
		row := thumb.Pix[y*thumb.Stride : y*thumb.Stride+4*b.Dx()]
		for i := 0; i < len(row); i += 4 {
			r += uint64(row[i])
			g += uint64(row[i+1])
			bl += uint64(row[i+2])
		}
	}

	c, _ := colorful.MakeColor(color.NRGBA{R: uint8(r / n), G: uint8(g / n), B: uint8(bl / n), A: 255})
	return c
}

func exposureClass(lightness float64) string {
	switch {
	case lightness < darkLightness:
		return ExposureDark
	case lightness > brightLightness:
		return ExposureBright
	default:
		return ExposureNormal
	}
}
