package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/winelabel-mcp/internal/preprocess"
)

func (a *app) binarize(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("binarize", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	format := fs.String("format", "png", "output format: png/tiff/bmp/pbm/pbm.zst")
	strategy := fs.String("strategy", "", "threshold strategy: sauvola/mean-bias/otsu (default from config)")
	fallback := fs.Bool("fallback", false, "low-cost mode: grayscale and mean-bias threshold only")
	workers := fs.Int("workers", runtime.NumCPU(), "photos processed concurrently")
	output := fs.String("o", "", `output path for a single input ("-" for stdout)`)
	outdir := fs.String("outdir", "", "output directory (default: next to each input)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	inputs := fs.Args()
	switch {
	case len(inputs) == 0:
		return errors.New("binarize: missing input file\nUsage: winelabel-mcp binarize [options] <input>...")
	case *output != "" && len(inputs) > 1:
		return errors.New("binarize: -o needs exactly one input")
	case *output != "" && *outdir != "":
		return errors.New("binarize: -o and -outdir are mutually exclusive")
	}

	f, err := preprocess.ParseFormat(*format)
	if err != nil {
		return err
	}

	pc := a.cfg.Preprocess
	if *fallback {
		pc.Fallback = true
	}
	if *strategy != "" {
		pc.Strategy = *strategy
	}
	pcfg, err := pc.Build()
	if err != nil {
		return err
	}
	p, err := preprocess.New(pcfg, preprocess.WithLogger(a.log))
	if err != nil {
		return err
	}

	sources := make([][]byte, len(inputs))
	for i, in := range inputs {
		if sources[i], err = a.readInput(in); err != nil {
			return err
		}
	}

	results, err := preprocess.ProcessBatch(ctx, p, sources, *workers)
	if err != nil {
		return err
	}

	if *outdir != "" {
		if err := os.MkdirAll(*outdir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	for i, res := range results {
		path := outputPath(inputs[i], *output, *outdir, f)
		if err := a.writeResult(path, res, f); err != nil {
			return err
		}
		a.log.WithFields(logrus.Fields{
			"input":    inputs[i],
			"output":   path,
			"width":    res.Gray.Width,
			"height":   res.Gray.Height,
			"strategy": res.Strategy,
		}).Info("label binarized")
	}
	return nil
}

// readInput reads a photo from path, or from stdin when path is "-".
func (a *app) readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo: %w", err)
	}
	return data, nil
}

func (a *app) writeResult(path string, res *preprocess.Result, f preprocess.Format) error {
	if path == "-" {
		return res.Encode(a.stdout, f)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := res.Encode(out, f); err != nil {
		out.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return out.Close()
}

// outputPath returns output when set, otherwise <name>.bin<ext> in outdir or
// next to the input. Stdin input is named "stdin".
func outputPath(input, output, outdir string, f preprocess.Format) string {
	if output != "" {
		return output
	}

	base, dir := "stdin", "."
	if input != "-" {
		base = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		dir = filepath.Dir(input)
	}
	if outdir != "" {
		dir = outdir
	}
	return filepath.Join(dir, base+".bin"+f.Extension())
}
