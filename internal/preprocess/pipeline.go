package preprocess

import (
	"context"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// Stage identifies a step of the pipeline state machine.
type Stage int

// Pipeline stages, in execution order.
const (
	StageDecoded Stage = iota
	StageDownscaled
	StageGrayscale
	StageDewarped
	StageContrastStretched
	StageEqualized
	StageBinarized
	StageEncoded
)

var stageNames = [...]string{
	StageDecoded:           "decoded",
	StageDownscaled:        "downscaled",
	StageGrayscale:         "grayscale",
	StageDewarped:          "dewarped",
	StageContrastStretched: "contrast-stretched",
	StageEqualized:         "equalized",
	StageBinarized:         "binarized",
	StageEncoded:           "encoded",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// Result is the outcome of one pipeline run.
type Result struct {
	// Gray is the binarized grid; every value is 0 or 255.
	Gray *Gray

	// SourceWidth and SourceHeight are the decoded image dimensions before downscaling.
	SourceWidth  int
	SourceHeight int

	// Strategy is the name of the threshold strategy that produced Gray.
	Strategy string

	// Radius is the neighborhood radius handed to the strategy.
	Radius int
}

// Encode writes the binarized grid in format f.
func (r *Result) Encode(w io.Writer, f Format) error {
	return Encode(w, r.Gray, f)
}

// Pipeline runs the preprocessing stages with a fixed Config. It holds no
// per-run state and is safe for concurrent use.
type Pipeline struct {
	config Config
	log    logrus.FieldLogger
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for per-stage debug output.
func WithLogger(log logrus.FieldLogger) Option {
	return func(p *Pipeline) {
		p.log = log
	}
}

// New validates cfg and returns a Pipeline. Invalid configurations return an
// error wrapping ErrInvalidConfig.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Pipeline{config: cfg}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		p.log = discard
	}
	return p, nil
}

// Config returns the pipeline's configuration.
func (p *Pipeline) Config() Config {
	return p.config
}

// Run decodes src and processes it. Decode failures wrap ErrDecode and abort
// before any stage runs.
func (p *Pipeline) Run(ctx context.Context, src []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, format, err := Decode(src)
	if err != nil {
		return nil, err
	}
	p.log.WithFields(logrus.Fields{
		"format": format,
		"width":  img.Bounds().Dx(),
		"height": img.Bounds().Dy(),
	}).Debug("decoded label photo")
	return p.RunImage(ctx, img)
}

// RunImage processes an already decoded image through every stage up to and
// including binarization. The context is checked before each stage; a
// cancelled run returns the context error and no partial result.
func (p *Pipeline) RunImage(ctx context.Context, img image.Image) (*Result, error) {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrDecode)
	}
	cfg := p.config
	run := &stageRunner{ctx: ctx, log: p.log}

	var rgba *RGBA
	if err := run.do(StageDownscaled, func() {
		rgba = Rasterize(img, cfg.MaxWorkingDimension)
	}); err != nil {
		return nil, err
	}

	var g *Gray
	if err := run.do(StageGrayscale, func() {
		g = Grayscale(rgba)
		rgba = nil
	}); err != nil {
		return nil, err
	}

	steps := []struct {
		stage Stage
		fn    func(*Gray) *Gray
	}{
		{StageDewarped, func(in *Gray) *Gray { return Dewarp(in, cfg.DewarpHalfAngle) }},
		{StageContrastStretched, func(in *Gray) *Gray {
			if !cfg.ContrastStretch {
				return in
			}
			return StretchContrast(in)
		}},
		{StageEqualized, func(in *Gray) *Gray { return Equalize(in, cfg.CLAHETileGrid, cfg.CLAHEClipMultiplier) }},
	}
	for _, s := range steps {
		if err := run.do(s.stage, func() { g = s.fn(g) }); err != nil {
			return nil, err
		}
	}

	radius := NeighborhoodRadius(g.Width, g.Height, cfg.RadiusFraction, cfg.MinRadius)
	if err := run.do(StageBinarized, func() {
		g = cfg.Threshold.Binarize(g, radius)
	}); err != nil {
		return nil, err
	}

	p.log.WithFields(logrus.Fields{
		"width":    g.Width,
		"height":   g.Height,
		"strategy": cfg.Threshold.Name(),
		"radius":   radius,
		"elapsed":  time.Since(run.start),
	}).Debug("label binarized")

	return &Result{
		Gray:         g,
		SourceWidth:  b.Dx(),
		SourceHeight: b.Dy(),
		Strategy:     cfg.Threshold.Name(),
		Radius:       radius,
	}, nil
}

// stageRunner checks for cancellation before each stage and logs its duration.
type stageRunner struct {
	ctx   context.Context
	log   logrus.FieldLogger
	start time.Time
}

func (r *stageRunner) do(stage Stage, fn func()) error {
	if r.start.IsZero() {
		r.start = time.Now()
	}
	if err := r.ctx.Err(); err != nil {
		return fmt.Errorf("pipeline aborted before %s: %w", stage, err)
	}
	t := time.Now()
	fn()
	r.log.WithFields(logrus.Fields{
		"stage":   stage.String(),
		"elapsed": time.Since(t),
	}).Debug("stage complete")
	return nil
}
