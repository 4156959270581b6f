// Package config loads the winelabel-mcp settings from an optional JSON file
// and the environment, and maps them onto a preprocess.Config.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/ironsheep/winelabel-mcp/internal/preprocess"
)

// Environment variables read by Load.
const (
	EnvConfigPath   = "WINELABEL_MCP_CONFIG"
	EnvLogLevel     = "WINELABEL_MCP_LOG_LEVEL"
	EnvStrategy     = "WINELABEL_MCP_STRATEGY"
	EnvMaxDimension = "WINELABEL_MCP_MAX_DIMENSION"
	EnvLanguage     = "WINELABEL_MCP_LANGUAGE"
	EnvTessdata     = "TESSDATA_PREFIX"
)

// DefaultPath is the config file used when EnvConfigPath is unset.
const DefaultPath = "winelabel.json"

// Config is the file layout of winelabel.json.
type Config struct {
	LogLevel   string           `json:"log_level"`
	Preprocess PreprocessConfig `json:"preprocess"`
	OCR        OCRConfig        `json:"ocr"`
}

// PreprocessConfig overrides pipeline tuning. Nil fields keep the value of the
// base configuration (DefaultConfig, or FallbackConfig when Fallback is set).
type PreprocessConfig struct {
	Fallback            bool     `json:"fallback,omitempty"`
	MaxWorkingDimension *int     `json:"max_working_dimension,omitempty"`
	DewarpHalfAngle     *float64 `json:"dewarp_half_angle,omitempty"` // radians, 0 disables
	ContrastStretch     *bool    `json:"contrast_stretch,omitempty"`
	CLAHETileGrid       *int     `json:"clahe_tile_grid,omitempty"` // 0 disables
	CLAHEClipMultiplier *float64 `json:"clahe_clip_multiplier,omitempty"`
	RadiusFraction      *float64 `json:"radius_fraction,omitempty"`
	MinRadius           *int     `json:"min_radius,omitempty"`
	Strategy            string   `json:"strategy,omitempty"`
	SauvolaK            *float64 `json:"sauvola_k,omitempty"`
	SauvolaR            *float64 `json:"sauvola_r,omitempty"`
	MeanBiasC           *float64 `json:"mean_bias_c,omitempty"`
}

// OCRConfig configures the text recognizer.
type OCRConfig struct {
	Language       string  `json:"language"`
	TessdataPrefix string  `json:"tessdata_prefix,omitempty"`
	MinConfidence  float64 `json:"min_confidence,omitempty"` // 0-100
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		OCR:      OCRConfig{Language: "eng"},
	}
}

// Load reads the file named by WINELABEL_MCP_CONFIG (or winelabel.json in the
// working directory) and then applies environment overrides. A missing file
// is not an error: defaults are used instead. An explicitly named file that
// does not exist is an error.
func Load() (*Config, error) {
	path, explicit := os.LookupEnv(EnvConfigPath)
	if !explicit || path == "" {
		path = DefaultPath
		explicit = false
	}

	cfg, err := LoadFile(path)
	if errors.Is(err, os.ErrNotExist) && !explicit {
		cfg, err = Default(), nil
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads one JSON config file on top of Default.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	cfg := Default()
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment through getenv. Empty
// variables are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := getenv(EnvStrategy); v != "" {
		c.Preprocess.Strategy = v
	}
	if v := getenv(EnvMaxDimension); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvMaxDimension, err)
		}
		c.Preprocess.MaxWorkingDimension = &n
	}
	if v := getenv(EnvLanguage); v != "" {
		c.OCR.Language = v
	}
	if v := getenv(EnvTessdata); v != "" {
		c.OCR.TessdataPrefix = v
	}
	return nil
}

// Build resolves the overrides into a validated preprocess.Config.
func (p PreprocessConfig) Build() (preprocess.Config, error) {
	cfg := preprocess.DefaultConfig()
	if p.Fallback {
		cfg = preprocess.FallbackConfig()
	}

	setInt(&cfg.MaxWorkingDimension, p.MaxWorkingDimension)
	setFloat(&cfg.DewarpHalfAngle, p.DewarpHalfAngle)
	if p.ContrastStretch != nil {
		cfg.ContrastStretch = *p.ContrastStretch
	}
	setInt(&cfg.CLAHETileGrid, p.CLAHETileGrid)
	setFloat(&cfg.CLAHEClipMultiplier, p.CLAHEClipMultiplier)
	setFloat(&cfg.RadiusFraction, p.RadiusFraction)
	setInt(&cfg.MinRadius, p.MinRadius)

	name := p.Strategy
	if name == "" {
		name = cfg.Threshold.Name()
	}
	strategy, err := preprocess.ParseStrategy(name, p.StrategyParams())
	if err != nil {
		return preprocess.Config{}, err
	}
	cfg.Threshold = strategy

	if err := cfg.Validate(); err != nil {
		return preprocess.Config{}, err
	}
	return cfg, nil
}

// StrategyParams returns the threshold tunables with overrides applied. The
// tool server uses them when a request names a strategy of its own.
func (p PreprocessConfig) StrategyParams() preprocess.StrategyParams {
	params := preprocess.DefaultStrategyParams()
	setFloat(&params.SauvolaK, p.SauvolaK)
	setFloat(&params.SauvolaR, p.SauvolaR)
	setFloat(&params.MeanBiasC, p.MeanBiasC)
	return params
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
