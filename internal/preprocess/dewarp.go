package preprocess

import "math"

// SourceColumn maps an output column x to the fractional source column of a
// cylindrical label of the given width photographed with arc half-angle
// halfAngle (radians):
//
//	θ(x)   = ((x − cx) / hw) · θmax
//	x_in   = cx + sin(θ(x)) / sin(θmax) · hw
//
// where cx = hw = width/2. The result is not clamped; SourceColumn(cx) == cx.
func SourceColumn(x float64, width int, halfAngle float64) float64 {
	hw := float64(width) / 2
	cx := hw
	theta := (x - cx) / hw * halfAngle
	return cx + math.Sin(theta)/math.Sin(halfAngle)*hw
}

// Dewarp undoes the horizontal compression near the edges of a label wrapped
// around a bottle.
//
// Each output column is sampled from SourceColumn, clamped to [0, width-2], by
// linear interpolation between the two nearest source columns of the same row.
// There is no vertical warp. A grid of width <= 1, or a halfAngle of zero, is
// returned unchanged.
//
// The input grid is consumed; the result is a new grid.
func Dewarp(g *Gray, halfAngle float64) *Gray {
	if g.Width <= 1 || halfAngle == 0 {
		return g
	}

	w := g.Width
	maxCol := float64(w - 2)

	// The column mapping is the same for every row.
	cols := make([]int, w)
	fracs := make([]float64, w)
	for x := 0; x < w; x++ {
		xin := SourceColumn(float64(x), w, halfAngle)
		if xin < 0 {
			xin = 0
		} else if xin > maxCol {
			xin = maxCol
		}
		x0 := int(xin)
		cols[x] = x0
		fracs[x] = xin - float64(x0)
	}

	dst := NewGray(w, g.Height)
	for y := 0; y < g.Height; y++ {
		row := g.Pix[y*w : (y+1)*w]
		out := dst.Pix[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			a := float64(row[cols[x]])
			b := float64(row[cols[x]+1])
			out[x] = clampByte(a + (b-a)*fracs[x])
		}
	}
	return dst
}
