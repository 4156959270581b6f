package preprocess

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestTargetSize(t *testing.T) {
	tests := []struct {
		name         string
		w, h, max    int
		wantW, wantH int
	}{
		{"landscape clamp", 4000, 3000, 1500, 1500, 1125},
		{"portrait clamp", 3000, 4000, 1500, 1125, 1500},
		{"square clamp", 3000, 3000, 1500, 1500, 1500},
		{"already fits", 800, 600, 1500, 800, 600},
		{"exactly max", 1500, 900, 1500, 1500, 900},
		{"no upscale", 10, 20, 1500, 10, 20},
		{"half rounds up", 400, 300, 150, 150, 113},
		{"thin strip keeps one pixel", 10000, 2, 100, 100, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := TargetSize(tt.w, tt.h, tt.max)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("TargetSize(%d, %d, %d) = %dx%d, want %dx%d",
					tt.w, tt.h, tt.max, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestRasterize_Downscale(t *testing.T) {
	img := createInMemoryImage(400, 300, color.RGBA{200, 100, 50, 255})

	grid := Rasterize(img, 150)

	if grid.Width != 150 || grid.Height != 113 {
		t.Fatalf("dimensions: got %dx%d, want 150x113", grid.Width, grid.Height)
	}
	if len(grid.Pix) != 4*150*113 {
		t.Fatalf("pixel buffer length: got %d, want %d", len(grid.Pix), 4*150*113)
	}
	// A solid image stays solid after resampling.
	p := grid.Pix[4*(56*150+75):]
	if p[0] != 200 || p[1] != 100 || p[2] != 50 || p[3] != 255 {
		t.Errorf("center pixel: got %v, want [200 100 50 255]", p[:4])
	}
}

func TestRasterize_LargePhoto(t *testing.T) {
	if testing.Short() {
		t.Skip("resamples a 12 megapixel image")
	}
	img := image.NewGray(image.Rect(0, 0, 4000, 3000))

	grid := Rasterize(img, 1500)

	if grid.Width != 1500 || grid.Height != 1125 {
		t.Errorf("dimensions: got %dx%d, want 1500x1125", grid.Width, grid.Height)
	}
}

func TestRasterize_NoUpscale(t *testing.T) {
	img := createNoiseImage(40, 30, 7)

	grid := Rasterize(img, 1500)

	if grid.Width != 40 || grid.Height != 30 {
		t.Fatalf("dimensions: got %dx%d, want 40x30", grid.Width, grid.Height)
	}
	// Without resampling the pixels are copied verbatim.
	for i := range grid.Pix {
		if grid.Pix[i] != img.Pix[i] {
			t.Fatalf("pixel byte %d: got %d, want %d", i, grid.Pix[i], img.Pix[i])
		}
	}
}

func TestRasterize_OffsetBounds(t *testing.T) {
	img := createInMemoryImage(60, 40, color.RGBA{10, 20, 30, 255}).SubImage(image.Rect(10, 10, 50, 30))

	grid := Rasterize(img, 1500)

	if grid.Width != 40 || grid.Height != 20 {
		t.Errorf("dimensions: got %dx%d, want 40x20", grid.Width, grid.Height)
	}
}

func TestDecode(t *testing.T) {
	data := encodePNG(t, createInMemoryImage(12, 8, color.RGBA{1, 2, 3, 255}))

	img, format, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if format != "png" {
		t.Errorf("format: got %s, want png", format)
	}
	if img.Bounds().Dx() != 12 || img.Bounds().Dy() != 8 {
		t.Errorf("dimensions: got %dx%d, want 12x8", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty input", nil},
		{"not an image", []byte("this is not an image")},
		{"truncated png", encodePNG(t, createInMemoryImage(20, 20, color.RGBA{0, 0, 0, 255}))[:40]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode(tt.data)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrDecode) {
				t.Errorf("error %v does not wrap ErrDecode", err)
			}
		})
	}
}
