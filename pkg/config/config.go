package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	loggerpkg "github.com/minhyannv/msise00-go/pkg/logger"
	"gopkg.in/yaml.v3"
)

const (
	FormatNetCDF4 = "netcdf4"
	FormatClassic = "classic"

	// DefaultFile is read when present and no -config flag is given.
	DefaultFile = "msise00.yaml"

	// DefaultLookback is how far before now the default time lies.
	DefaultLookback = 180 * 24 * time.Hour
)

// Config holds all runtime configuration for one model run.
type Config struct {
	Times       []string
	AltKm       []float64
	LatLon      []float64
	GridSpacing []float64
	PlotDir     string
	Output      string
	Format      string
	Quiet       bool
	Verbose     bool
	// LogLevel is the minimum level written to stderr; Verbose forces debug.
	LogLevel string
	Indices  *Indices

	Model ModelConfig
	Plot  PlotConfig
}

// Indices are optional solar and geomagnetic drivers forwarded to the model.
type Indices struct {
	F107s float64 `yaml:"f107s" json:"f107s"`
	F107  float64 `yaml:"f107" json:"f107"`
	Ap    float64 `yaml:"Ap" json:"Ap"`
}

// ModelConfig selects the external model command.
type ModelConfig struct {
	Command string
	Args    []string
	Timeout time.Duration
}

// PlotConfig selects the figure viewer and figure size.
type PlotConfig struct {
	Viewer     string
	ViewerArgs []string
	WidthInch  float64
	HeightInch float64
}

// DefaultConfig returns a baseline configuration without side effects.
func DefaultConfig() Config {
	return Config{
		Times:       []string{DefaultTime(time.Now())},
		AltKm:       []float64{200},
		GridSpacing: []float64{10, 10},
		Format:      FormatNetCDF4,
		LogLevel:    "info",
		Plot: PlotConfig{
			WidthInch:  8,
			HeightInch: 6,
		},
	}
}

// DefaultTime formats the instant DefaultLookback before now.
func DefaultTime(now time.Time) string {
	return now.UTC().Add(-DefaultLookback).Format(time.RFC3339)
}

// Normalize sanitizes configuration values and applies defaults.
func Normalize(cfg Config) Config {
	defaults := DefaultConfig()

	times := make([]string, 0, len(cfg.Times))
	for _, t := range cfg.Times {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		times = append(times, t)
	}
	if len(times) == 0 {
		times = defaults.Times
	}
	cfg.Times = times

	if len(cfg.AltKm) == 0 {
		cfg.AltKm = defaults.AltKm
	}
	if len(cfg.GridSpacing) == 0 {
		cfg.GridSpacing = defaults.GridSpacing
	}

	cfg.PlotDir = strings.TrimSpace(cfg.PlotDir)
	cfg.Output = strings.TrimSpace(cfg.Output)
	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))
	if cfg.Format == "" {
		cfg.Format = FormatNetCDF4
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}

	cfg.Model.Command = strings.TrimSpace(cfg.Model.Command)
	cfg.Plot.Viewer = strings.TrimSpace(cfg.Plot.Viewer)
	if cfg.Plot.WidthInch <= 0 {
		cfg.Plot.WidthInch = defaults.Plot.WidthInch
	}
	if cfg.Plot.HeightInch <= 0 {
		cfg.Plot.HeightInch = defaults.Plot.HeightInch
	}
	return cfg
}

// Validate reports argument-shape problems that Normalize cannot repair.
func Validate(cfg Config) error {
	if n := len(cfg.LatLon); n != 0 && n != 2 {
		return fmt.Errorf("latlon needs exactly 2 values, got %d", n)
	}
	if len(cfg.GridSpacing) != 2 {
		return fmt.Errorf("grid spacing needs exactly 2 values, got %d", len(cfg.GridSpacing))
	}
	switch cfg.Format {
	case FormatNetCDF4, FormatClassic:
	default:
		return fmt.Errorf("unknown output format %q: must be %q or %q", cfg.Format, FormatNetCDF4, FormatClassic)
	}
	if _, err := loggerpkg.ParseLevel(cfg.LogLevel); err != nil {
		return err
	}
	if cfg.Model.Timeout < 0 {
		return errors.New("model timeout cannot be negative")
	}
	return nil
}

// Level resolves the logging threshold.
func (c Config) Level() loggerpkg.Level {
	if c.Verbose {
		return loggerpkg.LevelDebug
	}
	level, err := loggerpkg.ParseLevel(c.LogLevel)
	if err != nil {
		return loggerpkg.LevelInfo
	}
	return level
}

// fileConfig mirrors the YAML run file.
type fileConfig struct {
	Time        []string  `yaml:"time"`
	AltKm       []float64 `yaml:"altkm"`
	LatLon      []float64 `yaml:"latlon"`
	GridSpacing []float64 `yaml:"grid_spacing"`
	PlotDir     string    `yaml:"odir"`
	Output      string    `yaml:"output"`
	Format      string    `yaml:"format"`
	Quiet       *bool     `yaml:"quiet"`
	Verbose     *bool     `yaml:"verbose"`
	LogLevel    string    `yaml:"log_level"`
	Indices     *Indices  `yaml:"indices"`

	Model struct {
		Command string   `yaml:"command"`
		Args    []string `yaml:"args"`
		Timeout string   `yaml:"timeout"`
	} `yaml:"model"`

	Plot struct {
		Viewer     string   `yaml:"viewer"`
		ViewerArgs []string `yaml:"viewer_args"`
		Width      float64  `yaml:"width"`
		Height     float64  `yaml:"height"`
	} `yaml:"plot"`
}

// LoadFile overlays the YAML run file at path onto cfg. Fields absent from
// the file keep their value in cfg.
func LoadFile(path string, cfg Config) (Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(content, &fc); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	if len(fc.Time) > 0 {
		cfg.Times = fc.Time
	}
	if len(fc.AltKm) > 0 {
		cfg.AltKm = fc.AltKm
	}
	if len(fc.LatLon) > 0 {
		cfg.LatLon = fc.LatLon
	}
	if len(fc.GridSpacing) > 0 {
		cfg.GridSpacing = fc.GridSpacing
	}
	if fc.PlotDir != "" {
		cfg.PlotDir = fc.PlotDir
	}
	if fc.Output != "" {
		cfg.Output = fc.Output
	}
	if fc.Format != "" {
		cfg.Format = fc.Format
	}
	if fc.Quiet != nil {
		cfg.Quiet = *fc.Quiet
	}
	if fc.Verbose != nil {
		cfg.Verbose = *fc.Verbose
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.Indices != nil {
		indices := *fc.Indices
		cfg.Indices = &indices
	}

	if fc.Model.Command != "" {
		cfg.Model.Command = fc.Model.Command
		cfg.Model.Args = fc.Model.Args
	}
	if fc.Model.Timeout != "" {
		d, err := time.ParseDuration(fc.Model.Timeout)
		if err != nil {
			return cfg, fmt.Errorf("parse %s: model.timeout: %w", path, err)
		}
		cfg.Model.Timeout = d
	}

	if fc.Plot.Viewer != "" {
		cfg.Plot.Viewer = fc.Plot.Viewer
		cfg.Plot.ViewerArgs = fc.Plot.ViewerArgs
	}
	if fc.Plot.Width > 0 {
		cfg.Plot.WidthInch = fc.Plot.Width
	}
	if fc.Plot.Height > 0 {
		cfg.Plot.HeightInch = fc.Plot.Height
	}
	return cfg, nil
}

// ApplyEnv overlays MSISE00_* environment variables onto cfg.
func ApplyEnv(cfg Config, getenv func(string) string) Config {
	if getenv == nil {
		getenv = os.Getenv
	}
	if cmd := strings.TrimSpace(getenv("MSISE00_MODEL_CMD")); cmd != "" {
		fields := strings.Fields(cmd)
		cfg.Model.Command = fields[0]
		cfg.Model.Args = fields[1:]
	}
	if level := strings.TrimSpace(getenv("MSISE00_LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}
	if viewer := strings.TrimSpace(getenv("MSISE00_VIEWER")); viewer != "" {
		fields := strings.Fields(viewer)
		cfg.Plot.Viewer = fields[0]
		cfg.Plot.ViewerArgs = fields[1:]
	}
	return cfg
}
