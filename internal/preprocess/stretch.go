package preprocess

// Percentile cut-offs of the global contrast stretch.
const (
	stretchLowFraction  = 0.01
	stretchHighFraction = 0.99
)

// Percentiles returns the first gray levels whose cumulative count exceeds 1%
// and 99% of the pixel count. An empty grid yields (0, 0).
func Percentiles(g *Gray) (lo, hi int) {
	total := len(g.Pix)
	if total == 0 {
		return 0, 0
	}
	hist := g.Histogram()

	lowCount := float64(total) * stretchLowFraction
	highCount := float64(total) * stretchHighFraction
	lo, hi = -1, -1
	cum := 0
	for v := 0; v < 256; v++ {
		cum += hist[v]
		if lo < 0 && float64(cum) > lowCount {
			lo = v
		}
		if hi < 0 && float64(cum) > highCount {
			hi = v
			break
		}
	}
	if lo < 0 {
		lo = 255
	}
	if hi < 0 {
		hi = 255
	}
	return lo, hi
}

// StretchContrast rescales gray levels so that the 1st percentile maps to 0 and
// the 99th to 255:
//
//	gray' = clamp((gray − lo) · 255 / (hi − lo), 0, 255)
//
// with truncating integer division. Flat or empty grids (hi <= lo) are left
// untouched. The grid is modified in place and returned.
func StretchContrast(g *Gray) *Gray {
	lo, hi := Percentiles(g)
	if hi <= lo {
		return g
	}

	var lut [256]uint8
	span := hi - lo
	for v := 0; v < 256; v++ {
		lut[v] = uint8(clampInt((v-lo)*255/span, 0, 255))
	}
	for i, v := range g.Pix {
		g.Pix[i] = lut[v]
	}
	return g
}
