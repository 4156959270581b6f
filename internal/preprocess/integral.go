package preprocess

// IntegralTable is a summed-area table over a Gray grid. Entry (x, y) holds the
// sum of all pixels in the rectangle [0,0]-[x,y], and optionally the sum of
// their squares. Both use uint64: a 1500x1500 grid of 255s has a sum of squares
// near 1.46e11, well past the range of 32-bit integers.
//
// A table is built for one stage invocation and discarded afterwards.
type IntegralTable struct {
	Width  int
	Height int
	Sum    []uint64
	SumSq  []uint64 // nil unless built withSquares
}

// NewIntegralTable builds the summed-area table of g. withSquares additionally
// accumulates squared pixel values.
func NewIntegralTable(g *Gray, withSquares bool) *IntegralTable {
	w, h := g.Width, g.Height
	t := &IntegralTable{Width: w, Height: h, Sum: make([]uint64, w*h)}
	if withSquares {
		t.SumSq = make([]uint64, w*h)
	}

	for y := 0; y < h; y++ {
		var rowSum, rowSq uint64
		for x := 0; x < w; x++ {
			i := y*w + x
			v := uint64(g.Pix[i])
			rowSum += v
			above := uint64(0)
			if y > 0 {
				above = t.Sum[i-w]
			}
			t.Sum[i] = rowSum + above

			if withSquares {
				rowSq += v * v
				aboveSq := uint64(0)
				if y > 0 {
					aboveSq = t.SumSq[i-w]
				}
				t.SumSq[i] = rowSq + aboveSq
			}
		}
	}
	return t
}

// Rect returns the sum, the sum of squares (0 without squares) and the pixel
// count of the inclusive rectangle [x0,y0]-[x1,y1]. Corners must lie inside the
// table with x0 <= x1 and y0 <= y1.
func (t *IntegralTable) Rect(x0, y0, x1, y1 int) (sum, sumSq uint64, count int) {
	sum = rectSum(t.Sum, t.Width, x0, y0, x1, y1)
	if t.SumSq != nil {
		sumSq = rectSum(t.SumSq, t.Width, x0, y0, x1, y1)
	}
	return sum, sumSq, (x1 - x0 + 1) * (y1 - y0 + 1)
}

// Window returns the statistics of the square of radius r around (x, y),
// clipped to the table bounds.
func (t *IntegralTable) Window(x, y, r int) (sum, sumSq uint64, count int) {
	x0 := max(0, x-r)
	y0 := max(0, y-r)
	x1 := min(t.Width-1, x+r)
	y1 := min(t.Height-1, y+r)
	return t.Rect(x0, y0, x1, y1)
}

func rectSum(table []uint64, w, x0, y0, x1, y1 int) uint64 {
	// Added before subtracting so the unsigned intermediate never wraps.
	s := table[y1*w+x1]
	if x0 > 0 && y0 > 0 {
		s += table[(y0-1)*w+(x0-1)]
	}
	if x0 > 0 {
		s -= table[y1*w+(x0-1)]
	}
	if y0 > 0 {
		s -= table[(y0-1)*w+x1]
	}
	return s
}
