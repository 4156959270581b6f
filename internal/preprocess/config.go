package preprocess

import (
	"errors"
	"fmt"
	"math"
)

// Sentinel errors. Callers classify failures with errors.Is.
var (
	// ErrDecode reports input bytes that are not a supported, non-empty raster.
	ErrDecode = errors.New("unsupported or corrupt image")

	// ErrInvalidConfig reports a Config that fails Validate.
	ErrInvalidConfig = errors.New("invalid preprocessing config")

	// ErrUnknownStrategy reports a threshold strategy name that ParseStrategy does not know.
	ErrUnknownStrategy = errors.New("unknown threshold strategy")

	// ErrUnknownFormat reports an output format name that ParseFormat does not know.
	ErrUnknownFormat = errors.New("unknown output format")
)

// Default tuning values.
const (
	DefaultMaxWorkingDimension = 1500
	DefaultDewarpHalfAngle     = math.Pi / 4
	DefaultCLAHETileGrid       = 8
	DefaultCLAHEClipMultiplier = 2.0
	DefaultSauvolaK            = 0.3
	DefaultSauvolaR            = 128.0
	DefaultMeanBiasC           = 10.0
	DefaultRadiusFraction      = 0.02
	DefaultMinRadius           = 5
)

// Config holds every tuning parameter of a pipeline run. It is passed by value
// and never mutated by the pipeline.
//
// Zero values disable the optional stages: DewarpHalfAngle == 0 skips the
// dewarp and CLAHETileGrid == 0 skips CLAHE.
type Config struct {
	// MaxWorkingDimension caps the longer side of the working grid.
	MaxWorkingDimension int

	// DewarpHalfAngle is the label arc half-angle in radians, in [0, π/2].
	DewarpHalfAngle float64

	// ContrastStretch enables the 1%/99% percentile stretch.
	ContrastStretch bool

	// CLAHETileGrid is the number of tiles per axis.
	CLAHETileGrid int

	// CLAHEClipMultiplier scales the per-bin clip limit (multiplier * area / 256).
	CLAHEClipMultiplier float64

	// RadiusFraction is the neighborhood radius as a fraction of the shorter side.
	RadiusFraction float64

	// MinRadius is the lower bound of the neighborhood radius in pixels.
	MinRadius int

	// Threshold binarizes the final gray grid.
	Threshold ThresholdStrategy
}

// DefaultConfig returns the full pipeline: dewarp, contrast stretch, CLAHE and Sauvola.
func DefaultConfig() Config {
	return Config{
		MaxWorkingDimension: DefaultMaxWorkingDimension,
		DewarpHalfAngle:     DefaultDewarpHalfAngle,
		ContrastStretch:     true,
		CLAHETileGrid:       DefaultCLAHETileGrid,
		CLAHEClipMultiplier: DefaultCLAHEClipMultiplier,
		RadiusFraction:      DefaultRadiusFraction,
		MinRadius:           DefaultMinRadius,
		Threshold:           Sauvola{K: DefaultSauvolaK, R: DefaultSauvolaR},
	}
}

// FallbackConfig returns the low-cost mode: grayscale followed by a mean-bias
// adaptive threshold, with no dewarp, contrast stretch or CLAHE.
func FallbackConfig() Config {
	return Config{
		MaxWorkingDimension: DefaultMaxWorkingDimension,
		CLAHEClipMultiplier: DefaultCLAHEClipMultiplier,
		RadiusFraction:      DefaultRadiusFraction,
		MinRadius:           DefaultMinRadius,
		Threshold:           MeanBias{C: DefaultMeanBiasC},
	}
}

// Validate reports the first invalid field, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.MaxWorkingDimension <= 0:
		return fmt.Errorf("%w: max working dimension must be positive, got %d", ErrInvalidConfig, c.MaxWorkingDimension)
	case math.IsNaN(c.DewarpHalfAngle) || c.DewarpHalfAngle < 0 || c.DewarpHalfAngle > math.Pi/2:
		return fmt.Errorf("%w: dewarp half-angle must be in [0, π/2], got %g", ErrInvalidConfig, c.DewarpHalfAngle)
	case c.CLAHETileGrid < 0:
		return fmt.Errorf("%w: CLAHE tile grid must not be negative, got %d", ErrInvalidConfig, c.CLAHETileGrid)
	case c.CLAHETileGrid > 0 && !(c.CLAHEClipMultiplier > 0):
		return fmt.Errorf("%w: CLAHE clip multiplier must be positive, got %g", ErrInvalidConfig, c.CLAHEClipMultiplier)
	case math.IsNaN(c.RadiusFraction) || c.RadiusFraction < 0:
		return fmt.Errorf("%w: radius fraction must not be negative, got %g", ErrInvalidConfig, c.RadiusFraction)
	case c.MinRadius < 1:
		return fmt.Errorf("%w: minimum radius must be at least 1, got %d", ErrInvalidConfig, c.MinRadius)
	case c.Threshold == nil:
		return fmt.Errorf("%w: threshold strategy is required", ErrInvalidConfig)
	}
	if v, ok := c.Threshold.(interface{ validate() error }); ok {
		if err := v.validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	return nil
}
