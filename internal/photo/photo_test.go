package photo

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ironsheep/winelabel-mcp/internal/preprocess"
)

// createTestPhoto writes a solid-color PNG into a temp directory and returns its path.
func createTestPhoto(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), "label.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

func TestCache_Load(t *testing.T) {
	path := createTestPhoto(t, 10, 10, color.White)
	cache := NewCache()

	first, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cache.Len() != 1 {
		t.Errorf("Len: got %d, want 1", cache.Len())
	}

	// Served from memory once cached.
	if err := os.Remove(path); err != nil {
		t.Fatalf("failed to remove file: %v", err)
	}
	second, err := cache.Load(path)
	if err != nil {
		t.Fatalf("cached Load failed: %v", err)
	}
	if &first[0] != &second[0] {
		t.Error("expected the cached slice to be returned")
	}

	cache.Evict(path)
	if _, err := cache.Load(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("after Evict: got %v, want os.ErrNotExist", err)
	}
}

func TestCache_Clear(t *testing.T) {
	cache := NewCache()
	for i := 0; i < 3; i++ {
		p := createTestPhoto(t, 4, 4, color.Black)
		if _, err := cache.Load(p); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
	}
	cache.Evict("/does/not/exist")
	if cache.Len() != 3 {
		t.Fatalf("Len: got %d, want 3", cache.Len())
	}

	cache.Clear()

	if cache.Len() != 0 {
		t.Errorf("Len after Clear: got %d, want 0", cache.Len())
	}
}

func TestCache_ConcurrentAccess(t *testing.T) {
	path := createTestPhoto(t, 20, 20, color.White)
	cache := NewCache()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(path); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Load failed: %v", err)
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name         string
		w, h, maxDim int
		c            color.RGBA
		wantW, wantH int
		hex          string
		exposure     string
	}{
		{"terracotta", 40, 30, 1500, color.RGBA{200, 100, 50, 255}, 40, 30, "#c86432", ExposureNormal},
		{"dark cellar shot", 60, 20, 1500, color.RGBA{20, 20, 20, 255}, 60, 20, "#141414", ExposureDark},
		{"blown out", 50, 50, 1500, color.RGBA{240, 240, 240, 255}, 50, 50, "#f0f0f0", ExposureBright},
		{"downscaled", 400, 300, 150, color.RGBA{0, 0, 0, 255}, 150, 113, "#000000", ExposureDark},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := createTestPhoto(t, tt.w, tt.h, tt.c)

			info, err := Describe(NewCache(), path, tt.maxDim)
			if err != nil {
				t.Fatalf("Describe failed: %v", err)
			}

			if info.Width != tt.w || info.Height != tt.h || info.Format != "png" {
				t.Errorf("source: got %dx%d %s, want %dx%d png", info.Width, info.Height, info.Format, tt.w, tt.h)
			}
			if info.WorkingWidth != tt.wantW || info.WorkingHeight != tt.wantH {
				t.Errorf("working size: got %dx%d, want %dx%d", info.WorkingWidth, info.WorkingHeight, tt.wantW, tt.wantH)
			}
			if info.MeanColor != tt.hex {
				t.Errorf("mean color: got %s, want %s", info.MeanColor, tt.hex)
			}
			if info.Exposure != tt.exposure {
				t.Errorf("exposure: got %s (lightness %.3f), want %s", info.Exposure, info.Lightness, tt.exposure)
			}
			stat, _ := os.Stat(path)
			if info.FileSizeBytes != stat.Size() {
				t.Errorf("file size: got %d, want %d", info.FileSizeBytes, stat.Size())
			}
		})
	}
}

func TestDescribe_Lightness(t *testing.T) {
	path := createTestPhoto(t, 16, 16, color.RGBA{200, 100, 50, 255})

	info, err := Describe(NewCache(), path, preprocess.DefaultMaxWorkingDimension)
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}

	want := (200.0 + 50.0) / 2 / 255
	if math.Abs(info.Lightness-want) > 1e-9 {
		t.Errorf("lightness: got %f, want %f", info.Lightness, want)
	}
}

func TestDescribe_Errors(t *testing.T) {
	dir := t.TempDir()
	bogus := filepath.Join(dir, "notes.png")
	if err := os.WriteFile(bogus, []byte("not a photo"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if _, err := Describe(NewCache(), filepath.Join(dir, "missing.jpg"), 1500); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: got %v, want os.ErrNotExist", err)
	}
	if _, err := Describe(NewCache(), bogus, 1500); !errors.Is(err, preprocess.ErrDecode) {
		t.Errorf("bogus file: got %v, want ErrDecode", err)
	}
}
