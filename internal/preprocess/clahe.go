package preprocess

import "math"

// TileLUT builds the equalization lookup table of one CLAHE tile.
//
// hist is the tile's 256-bin histogram and area its pixel count. Each bin is
// clipped at max(1, floor(clip*area/256)); the clipped excess is spread evenly
// over all bins (floor(excess/256) each) and the resulting CDF is scaled to
// [0,255]. All arithmetic is integer, so the table is non-decreasing.
func TileLUT(hist [256]int, area int, clip float64) [256]uint8 {
	limit := int(math.Floor(clip * float64(area) / 256))
	if limit < 1 {
		limit = 1
	}

	excess := 0
	for v := range hist {
		if hist[v] > limit {
			excess += hist[v] - limit
			hist[v] = limit
		}
	}
	add := excess / 256
	for v := range hist {
		hist[v] += add
	}

	var lut [256]uint8
	cdf := 0
	total := 0
	for _, n := range hist {
		total += n
	}
	if total == 0 {
		for v := range lut {
			lut[v] = uint8(v)
		}
		return lut
	}
	for v := range hist {
		cdf += hist[v]
		lut[v] = uint8(cdf * 255 / total)
	}
	return lut
}

// tileGrid describes the CLAHE partition of a width x height grid.
type tileGrid struct {
	tileW, tileH int // nominal tile size (ceiling division)
	nx, ny       int // tiles per axis actually covering the grid
}

func newTileGrid(width, height, tiles int) tileGrid {
	tw := (width + tiles - 1) / tiles
	th := (height + tiles - 1) / tiles
	return tileGrid{
		tileW: tw,
		tileH: th,
		nx:    (width + tw - 1) / tw,
		ny:    (height + th - 1) / th,
	}
}

// Equalize applies contrast-limited adaptive histogram equalization.
//
// The grid is split into tiles x tiles tiles of ceil(width/tiles) by
// ceil(height/tiles) pixels; trailing tiles may be smaller. Every tile gets a
// TileLUT. Each output pixel blends the LUTs of the four nearest tile centers
// bilinearly, which removes seams at tile borders. Pixels outside the outermost
// centers reuse the border tile.
//
// tiles <= 0 or an empty grid returns the input unchanged. Otherwise the input is
// consumed and a new grid is returned.
func Equalize(g *Gray, tiles int, clip float64) *Gray {
	if tiles <= 0 || g.Width == 0 || g.Height == 0 {
		return g
	}

	tg := newTileGrid(g.Width, g.Height, tiles)
	luts := make([][256]uint8, tg.nx*tg.ny)
	for ty := 0; ty < tg.ny; ty++ {
		for tx := 0; tx < tg.nx; tx++ {
			luts[ty*tg.nx+tx] = tileLUTAt(g, tg, tx, ty, clip)
		}
	}

	// Horizontal neighbours and weights depend only on x.
	x0s := make([]int, g.Width)
	x1s := make([]int, g.Width)
	wxs := make([]float64, g.Width)
	for x := 0; x < g.Width; x++ {
		x0s[x], x1s[x], wxs[x] = tileNeighbors(x, tg.tileW, tg.nx)
	}

	dst := NewGray(g.Width, g.Height)
	for y := 0; y < g.Height; y++ {
		ty0, ty1, wy := tileNeighbors(y, tg.tileH, tg.ny)
		row := g.Pix[y*g.Width : (y+1)*g.Width]
		out := dst.Pix[y*g.Width : (y+1)*g.Width]
		for x, v := range row {
			tl := float64(luts[ty0*tg.nx+x0s[x]][v])
			tr := float64(luts[ty0*tg.nx+x1s[x]][v])
			bl := float64(luts[ty1*tg.nx+x0s[x]][v])
			br := float64(luts[ty1*tg.nx+x1s[x]][v])

			wx := wxs[x]
			top := tl + (tr-tl)*wx
			bottom := bl + (br-bl)*wx
			out[x] = clampByte(top + (bottom-top)*wy)
		}
	}
	return dst
}

// tileLUTAt builds the LUT of tile (tx, ty).
func tileLUTAt(g *Gray, tg tileGrid, tx, ty int, clip float64) [256]uint8 {
	x0 := tx * tg.tileW
	y0 := ty * tg.tileH
	x1 := min(x0+tg.tileW, g.Width)
	y1 := min(y0+tg.tileH, g.Height)

	var hist [256]int
	for y := y0; y < y1; y++ {
		for _, v := range g.Pix[y*g.Width+x0 : y*g.Width+x1] {
			hist[v]++
		}
	}
	return TileLUT(hist, (x1-x0)*(y1-y0), clip)
}

// tileNeighbors locates pos relative to tile centers along one axis. It returns
// the indices of the two tiles whose centers bracket pos, clamped to [0, n-1],
// and the weight of the second one.
func tileNeighbors(pos, size, n int) (int, int, float64) {
	f := (float64(pos)+0.5)/float64(size) - 0.5
	i0 := int(math.Floor(f))
	w := f - float64(i0)
	i1 := i0 + 1
	return clampInt(i0, 0, n-1), clampInt(i1, 0, n-1), w
}
