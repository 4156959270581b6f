package preprocess

// Luma weights (ITU-R BT.601).
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// Grayscale reduces an RGBA grid to luminance:
//
//	gray = trunc(0.299*R + 0.587*G + 0.114*B)
//
// Alpha is ignored. The output has the same dimensions as the input.
func Grayscale(src *RGBA) *Gray {
	dst := NewGray(src.Width, src.Height)
	for i := range dst.Pix {
		p := src.Pix[i*4 : i*4+3 : i*4+3]
		r, g, b := float64(p[0]), float64(p[1]), float64(p[2])
		// The explicit conversions round each product and keep the compiler
		// from fusing them, so results match on every architecture.
		dst.Pix[i] = clampByte(float64(lumaR*r) + float64(lumaG*g) + float64(lumaB*b))
	}
	return dst
}
