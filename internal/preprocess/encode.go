package preprocess

import (
	"bufio"
	"bytes"
	"fmt"
	"image/png"
	"io"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/klauspost/compress/zstd"
)

// Format is an output encoding of a binarized grid.
type Format string

// Supported output formats.
const (
	FormatPNG     Format = "png"
	FormatTIFF    Format = "tiff"
	FormatBMP     Format = "bmp"
	FormatPBM     Format = "pbm"     // Netpbm P4, one bit per pixel
	FormatPBMZstd Format = "pbm.zst" // P4 compressed with zstd
)

// ParseFormat resolves a format name or file extension (with or without the
// leading dot). An empty name selects PNG.
func ParseFormat(name string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), ".") {
	case "", "png":
		return FormatPNG, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	case "bmp":
		return FormatBMP, nil
	case "pbm":
		return FormatPBM, nil
	case "pbm.zst", "pbm.zstd", "zst":
		return FormatPBMZstd, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// MimeType returns the media type of the encoding.
func (f Format) MimeType() string {
	switch f {
	case FormatTIFF:
		return "image/tiff"
	case FormatBMP:
		return "image/bmp"
	case FormatPBM:
		return "image/x-portable-bitmap"
	case FormatPBMZstd:
		return "application/zstd"
	default:
		return "image/png"
	}
}

// Extension returns the file extension including the leading dot.
func (f Format) Extension() string {
	if f == "" {
		return ".png"
	}
	return "." + string(f)
}

// Encode writes g to w in format f. PNG, TIFF and BMP store 8-bit gray;
// the PBM formats store one bit per pixel, where any value below 128 is black.
func Encode(w io.Writer, g *Gray, f Format) error {
	switch f {
	case FormatPNG, "":
		return encodeImaging(w, g, imaging.PNG)
	case FormatTIFF:
		return encodeImaging(w, g, imaging.TIFF)
	case FormatBMP:
		return encodeImaging(w, g, imaging.BMP)
	case FormatPBM:
		return EncodePBM(w, g)
	case FormatPBMZstd:
		return encodePBMZstd(w, g)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}

func encodeImaging(w io.Writer, g *Gray, f imaging.Format) error {
	if err := imaging.Encode(w, g.ToImage(), f, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		return fmt.Errorf("failed to encode %s: %w", f, err)
	}
	return nil
}

// EncodePBM writes g as a binary Netpbm bitmap (P4). Bits are packed MSB first,
// 1 meaning black, and every row is padded to a whole byte.
func EncodePBM(w io.Writer, g *Gray) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P4\n%d %d\n", g.Width, g.Height); err != nil {
		return fmt.Errorf("failed to write pbm header: %w", err)
	}

	row := make([]byte, (g.Width+7)/8)
	for y := 0; y < g.Height; y++ {
		for i := range row {
			row[i] = 0
		}
		for x, v := range g.Pix[y*g.Width : (y+1)*g.Width] {
			if v < 128 {
				row[x>>3] |= 0x80 >> uint(x&7)
			}
		}
		if _, err := bw.Write(row); err != nil {
			return fmt.Errorf("failed to write pbm row: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush pbm: %w", err)
	}
	return nil
}

// DecodePBM reads a binary Netpbm bitmap written by EncodePBM. Black bits
// become 0 and white bits 255.
func DecodePBM(r io.Reader) (*Gray, error) {
	br := bufio.NewReader(r)
	var w, h int
	if _, err := fmt.Fscanf(br, "P4\n%d %d\n", &w, &h); err != nil {
		return nil, fmt.Errorf("%w: bad pbm header: %v", ErrDecode, err)
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: pbm size %dx%d", ErrDecode, w, h)
	}

	g := NewGray(w, h)
	row := make([]byte, (w+7)/8)
	for y := 0; y < h; y++ {
		if _, err := io.ReadFull(br, row); err != nil {
			return nil, fmt.Errorf("%w: short pbm row %d: %v", ErrDecode, y, err)
		}
		out := g.Pix[y*w : (y+1)*w]
		for x := range out {
			if row[x>>3]&(0x80>>uint(x&7)) == 0 {
				out[x] = 255
			}
		}
	}
	return g, nil
}

func encodePBMZstd(w io.Writer, g *Gray) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	if err := EncodePBM(enc, g); err != nil {
		_ = enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finish zstd stream: %w", err)
	}
	return nil
}

// DecodePBMZstd reads a zstd-compressed P4 stream written by Encode with
// FormatPBMZstd.
func DecodePBMZstd(r io.Reader) (*Gray, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer dec.Close()
	return DecodePBM(dec)
}

// EncodeBytes is Encode into a fresh byte slice.
func EncodeBytes(g *Gray, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, g, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
