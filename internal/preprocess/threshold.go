package preprocess

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/anthonynsimon/bild/histogram"
)

// ThresholdStrategy binarizes a gray grid. Implementations return a new grid
// containing only 0 (black) and 255 (white); the input is consumed.
type ThresholdStrategy interface {
	// Name is the identifier accepted by ParseStrategy.
	Name() string

	// Binarize thresholds g. radius is the neighborhood radius for local
	// strategies and is ignored by global ones.
	Binarize(g *Gray, radius int) *Gray
}

// Strategy names.
const (
	StrategySauvola  = "sauvola"
	StrategyMeanBias = "mean-bias"
	StrategyOtsu     = "otsu"
)

// NeighborhoodRadius returns max(minRadius, round(fraction*min(width, height))).
func NeighborhoodRadius(width, height int, fraction float64, minRadius int) int {
	shorter := width
	if height < shorter {
		shorter = height
	}
	r := int(math.Round(fraction * float64(shorter)))
	if r < minRadius {
		r = minRadius
	}
	return r
}

// Sauvola thresholds each pixel against its neighborhood:
//
//	threshold = mean · (1 + K · (stdDev / R − 1))
//
// A pixel is white when its value is >= threshold. Flat regions of any level
// come out white; dark pixels turn black only where the local contrast is high.
type Sauvola struct {
	K float64 // sensitivity, typically 0.2–0.5
	R float64 // dynamic range of the standard deviation, 128 for 8-bit input
}

// Name implements ThresholdStrategy.
func (Sauvola) Name() string { return StrategySauvola }

func (s Sauvola) validate() error {
	if !(s.R > 0) {
		return fmt.Errorf("sauvola R must be positive, got %g", s.R)
	}
	if math.IsNaN(s.K) {
		return errors.New("sauvola K is NaN")
	}
	return nil
}

// Binarize implements ThresholdStrategy.
func (s Sauvola) Binarize(g *Gray, radius int) *Gray {
	table := NewIntegralTable(g, true)
	dst := NewGray(g.Width, g.Height)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			sum, sumSq, count := table.Window(x, y, radius)
			n := float64(count)
			mean := float64(sum) / n
			variance := float64(sumSq)/n - mean*mean
			if variance < 0 {
				variance = 0
			}
			threshold := mean * (1 + s.K*(math.Sqrt(variance)/s.R-1))

			i := y*g.Width + x
			if float64(g.Pix[i]) >= threshold {
				dst.Pix[i] = 255
			}
		}
	}
	return dst
}

// MeanBias is the simple adaptive threshold: a pixel is white when it is
// brighter than the neighborhood mean minus C.
type MeanBias struct {
	C float64 // bias in gray levels
}

// Name implements ThresholdStrategy.
func (MeanBias) Name() string { return StrategyMeanBias }

func (m MeanBias) validate() error {
	if math.IsNaN(m.C) {
		return errors.New("mean-bias C is NaN")
	}
	return nil
}

// Binarize implements ThresholdStrategy.
func (m MeanBias) Binarize(g *Gray, radius int) *Gray {
	table := NewIntegralTable(g, false)
	dst := NewGray(g.Width, g.Height)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			sum, _, count := table.Window(x, y, radius)
			mean := float64(sum) / float64(count)

			i := y*g.Width + x
			if float64(g.Pix[i]) > mean-m.C {
				dst.Pix[i] = 255
			}
		}
	}
	return dst
}

// Otsu applies one global threshold chosen to maximize the between-class
// variance of the histogram. It ignores the neighborhood radius.
type Otsu struct{}

// Name implements ThresholdStrategy.
func (Otsu) Name() string { return StrategyOtsu }

// Binarize implements ThresholdStrategy.
func (Otsu) Binarize(g *Gray, _ int) *Gray {
	var hist [256]int
	copy(hist[:], histogram.NewRGBAHistogram(g.ToImage()).R.Bins)
	level := OtsuLevel(hist)

	dst := NewGray(g.Width, g.Height)
	for i, v := range g.Pix {
		if int(v) > level {
			dst.Pix[i] = 255
		}
	}
	return dst
}

// OtsuLevel returns the gray level t that maximizes the between-class variance
// of the classes [0,t] and (t,255]. Ties resolve to the lowest level. A
// histogram with a single populated level v returns v-1, so nothing falls in
// the lower class.
func OtsuLevel(hist [256]int) int {
	total := 0
	weighted := 0.0
	for v, n := range hist {
		total += n
		weighted += float64(v * n)
	}
	if total == 0 {
		return 0
	}

	best, bestVar := 0, -1.0
	var below int
	var belowSum float64
	for t := 0; t < 256; t++ {
		below += hist[t]
		belowSum += float64(t * hist[t])
		above := total - below
		if below == 0 || above == 0 {
			continue
		}
		m0 := belowSum / float64(below)
		m1 := (weighted - belowSum) / float64(above)
		between := float64(below) * float64(above) * (m0 - m1) * (m0 - m1)
		if between > bestVar {
			best, bestVar = t, between
		}
	}
	if bestVar < 0 {
		// Single populated level: everything at or above it is white.
		for v, n := range hist {
			if n > 0 {
				return v - 1
			}
		}
	}
	return best
}

// StrategyParams carries the tunables ParseStrategy applies to a named strategy.
type StrategyParams struct {
	SauvolaK  float64
	SauvolaR  float64
	MeanBiasC float64
}

// DefaultStrategyParams returns the default tunables for every strategy.
func DefaultStrategyParams() StrategyParams {
	return StrategyParams{
		SauvolaK:  DefaultSauvolaK,
		SauvolaR:  DefaultSauvolaR,
		MeanBiasC: DefaultMeanBiasC,
	}
}

// ParseStrategy resolves a strategy by name (case-insensitive). Unknown names
// return ErrUnknownStrategy.
func ParseStrategy(name string, p StrategyParams) (ThresholdStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case StrategySauvola, "":
		return Sauvola{K: p.SauvolaK, R: p.SauvolaR}, nil
	case StrategyMeanBias, "meanbias", "mean":
		return MeanBias{C: p.MeanBiasC}, nil
	case StrategyOtsu:
		return Otsu{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}
