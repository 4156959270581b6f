package preprocess

import (
	"image"
	"math"
)

// RGBA is a non-premultiplied four-channel pixel grid, 4 bytes per pixel, row-major.
type RGBA struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewRGBA allocates a zeroed RGBA grid.
func NewRGBA(width, height int) *RGBA {
	return &RGBA{Width: width, Height: height, Pix: make([]uint8, 4*width*height)}
}

// RGBAFromImage copies an *image.NRGBA into a grid. The image's Min point is ignored.
func RGBAFromImage(img *image.NRGBA) *RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	grid := NewRGBA(w, h)
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+4*w]
		copy(grid.Pix[y*4*w:(y+1)*4*w], src)
	}
	return grid
}

// Gray is a single-channel pixel grid, one byte per pixel, row-major.
type Gray struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewGray allocates a zeroed Gray grid.
func NewGray(width, height int) *Gray {
	return &Gray{Width: width, Height: height, Pix: make([]uint8, width*height)}
}

// GrayFromImage copies an *image.Gray into a grid.
func GrayFromImage(img *image.Gray) *Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	grid := NewGray(w, h)
	for y := 0; y < h; y++ {
		copy(grid.Pix[y*w:(y+1)*w], img.Pix[y*img.Stride:y*img.Stride+w])
	}
	return grid
}

// At returns the gray value at (x, y).
func (g *Gray) At(x, y int) uint8 {
	return g.Pix[y*g.Width+x]
}

// Set stores v at (x, y).
func (g *Gray) Set(x, y int, v uint8) {
	g.Pix[y*g.Width+x] = v
}

// Clone returns a deep copy of the grid.
func (g *Gray) Clone() *Gray {
	c := &Gray{Width: g.Width, Height: g.Height, Pix: make([]uint8, len(g.Pix))}
	copy(c.Pix, g.Pix)
	return c
}

// Histogram returns the 256-bin histogram of the grid.
func (g *Gray) Histogram() [256]int {
	var hist [256]int
	for _, v := range g.Pix {
		hist[v]++
	}
	return hist
}

// ToImage returns the grid as an *image.Gray anchored at (0,0). The pixel slice
// is copied so the grid and the image do not alias.
func (g *Gray) ToImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.Width, g.Height))
	copy(img.Pix, g.Pix)
	return img
}

// clampByte truncates v toward zero and clamps it to [0,255].
func clampByte(v float64) uint8 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

func clampInt(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
