package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/winelabel-mcp/internal/preprocess"
)

// writeConfig writes content to a winelabel.json in a fresh temp directory.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultPath)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvLogLevel, EnvStrategy, EnvMaxDimension, EnvLanguage, EnvTessdata} {
		t.Setenv(k, "")
	}
}

func TestLoad_MissingDefaultFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvConfigPath, "")
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LogLevel != "info" || cfg.OCR.Language != "eng" {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "nope.json"))

	_, err := Load()
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("got %v, want os.ErrNotExist", err)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `{
		"log_level": "warn",
		"preprocess": {"strategy": "mean-bias", "mean_bias_c": 6, "clahe_tile_grid": 4},
		"ocr": {"language": "fra", "min_confidence": 40}
	}`)
	t.Setenv(EnvConfigPath, path)
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvMaxDimension, "900")
	t.Setenv(EnvTessdata, "/opt/tessdata")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("log level: got %s, want debug (env wins)", cfg.LogLevel)
	}
	if cfg.OCR.Language != "fra" || cfg.OCR.MinConfidence != 40 || cfg.OCR.TessdataPrefix != "/opt/tessdata" {
		t.Errorf("ocr: got %+v", cfg.OCR)
	}

	pc, err := cfg.Preprocess.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if pc.MaxWorkingDimension != 900 || pc.CLAHETileGrid != 4 {
		t.Errorf("preprocess: got max %d tiles %d, want 900 and 4", pc.MaxWorkingDimension, pc.CLAHETileGrid)
	}
	if mb, ok := pc.Threshold.(preprocess.MeanBias); !ok || mb.C != 6 {
		t.Errorf("threshold: got %#v, want MeanBias{C: 6}", pc.Threshold)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     string
	}{
		{"malformed json", `{"log_level": `, ""},
		{"unknown field", `{"colour": "red"}`, ""},
		{"bad max dimension", `{}`, "large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(EnvConfigPath, writeConfig(t, tt.content))
			t.Setenv(EnvMaxDimension, tt.env)

			if _, err := Load(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestBuild_Defaults(t *testing.T) {
	cfg, err := PreprocessConfig{}.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	want := preprocess.DefaultConfig()
	if cfg != want {
		t.Errorf("got %+v, want %+v", cfg, want)
	}

	fb, err := PreprocessConfig{Fallback: true}.Build()
	if err != nil {
		t.Fatalf("Build fallback failed: %v", err)
	}
	if fb != preprocess.FallbackConfig() {
		t.Errorf("fallback: got %+v, want %+v", fb, preprocess.FallbackConfig())
	}
}

func TestBuild_Overrides(t *testing.T) {
	zero := 0.0
	off := false
	k := 0.5
	minR := 3

	cfg, err := PreprocessConfig{
		DewarpHalfAngle: &zero,
		ContrastStretch: &off,
		MinRadius:       &minR,
		SauvolaK:        &k,
	}.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if cfg.DewarpHalfAngle != 0 || cfg.ContrastStretch || cfg.MinRadius != 3 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if s, ok := cfg.Threshold.(preprocess.Sauvola); !ok || s.K != 0.5 || s.R != preprocess.DefaultSauvolaR {
		t.Errorf("threshold: got %#v", cfg.Threshold)
	}
}

func TestBuild_Invalid(t *testing.T) {
	neg := -1
	angle := math.Pi

	tests := []struct {
		name string
		pc   PreprocessConfig
		want error
	}{
		{"unknown strategy", PreprocessConfig{Strategy: "niblack"}, preprocess.ErrUnknownStrategy},
		{"negative dimension", PreprocessConfig{MaxWorkingDimension: &neg}, preprocess.ErrInvalidConfig},
		{"half-angle too wide", PreprocessConfig{DewarpHalfAngle: &angle}, preprocess.ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.pc.Build(); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestStrategyParams(t *testing.T) {
	c := 4.0
	got := PreprocessConfig{MeanBiasC: &c}.StrategyParams()

	want := preprocess.DefaultStrategyParams()
	want.MeanBiasC = 4
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}
