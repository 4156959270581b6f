// Command winelabel-mcp preprocesses wine-label photos for OCR.
//
// Usage:
//
//	winelabel-mcp                          Serve MCP over stdin/stdout
//	winelabel-mcp binarize [options] <in>  Binarize photos to files
//	winelabel-mcp version                  Print version information
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/winelabel-mcp/internal/config"
	"github.com/ironsheep/winelabel-mcp/internal/logging"
	"github.com/ironsheep/winelabel-mcp/internal/ocr/tesseract"
	"github.com/ironsheep/winelabel-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "winelabel-mcp: %v\n", err)
		os.Exit(1)
	}
}

// app carries what every command needs once the config is loaded.
type app struct {
	cfg    *config.Config
	log    *logrus.Logger
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd := ""
	if len(args) > 0 {
		cmd = args[0]
	}

	switch cmd {
	case "--version", "-v", "version":
		printVersion(stdout)
		return nil
	case "--help", "-h", "help":
		printUsage(stdout)
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a := &app{
		cfg:    cfg,
		log:    logging.New(cfg.LogLevel, stderr),
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}

	switch cmd {
	case "":
		return a.serve(ctx)
	case "binarize":
		return a.binarize(ctx, args[1:])
	default:
		return fmt.Errorf("unknown command %q (see winelabel-mcp --help)", cmd)
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "winelabel-mcp %s\n", Version)
	fmt.Fprintf(w, "  Build time: %s\n", BuildTime)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Tesseract:  %s\n", tesseract.Version())
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `winelabel-mcp - wine-label preprocessing for OCR

Usage:
  winelabel-mcp                               Serve MCP over stdin/stdout
  winelabel-mcp binarize [options] <input>... Binarize label photos to files
  winelabel-mcp --version, -v                 Print version information
  winelabel-mcp --help, -h                    Print this help message

Run "winelabel-mcp binarize -h" for binarize options.

Configuration is read from %s in the working directory, or the file
named by %s. Environment overrides:
  %s=debug
  %s=sauvola|mean-bias|otsu
  %s=1500
  %s=eng
  %s=/path/to/tessdata

In server mode stdout carries the MCP protocol and logs go to stderr.
Configure it in your MCP client (e.g., Claude Desktop).
`, config.DefaultPath, config.EnvConfigPath, config.EnvLogLevel, config.EnvStrategy,
		config.EnvMaxDimension, config.EnvLanguage, config.EnvTessdata)
}

func (a *app) serve(ctx context.Context) error {
	pcfg, err := a.cfg.Preprocess.Build()
	if err != nil {
		return err
	}

	rec := tesseract.New(tesseract.Options{
		Language:       a.cfg.OCR.Language,
		TessdataPrefix: a.cfg.OCR.TessdataPrefix,
	})
	if info := rec.Info(); !info.Available {
		a.log.WithField("reason", info.Error).Warn("OCR engine unavailable, label_ocr will fail")
	}

	a.log.WithFields(logrus.Fields{
		"version":  Version,
		"built":    BuildTime,
		"commit":   GitCommit,
		"strategy": pcfg.Threshold.Name(),
	}).Debug("starting MCP server")

	srv := server.New(server.Options{
		Preprocess:     pcfg,
		StrategyParams: a.cfg.Preprocess.StrategyParams(),
		Recognizer:     rec,
		MinConfidence:  a.cfg.OCR.MinConfidence,
		Version:        Version,
		Logger:         a.log,
	})
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
