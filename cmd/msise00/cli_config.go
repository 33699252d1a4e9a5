package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	configpkg "github.com/minhyannv/msise00-go/pkg/config"
)

// ParseError reports a malformed command line.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

func parseErrorf(format string, args ...any) error {
	return &ParseError{Err: fmt.Errorf(format, args...)}
}

// multiValueFlags take every following token up to the next flag.
var multiValueFlags = map[string]bool{
	"t": true, "time": true,
	"a": true, "altkm": true,
	"c": true, "latlon": true,
	"gs": true,
}

// parseCLIConfig layers defaults, the YAML run file, the environment and
// finally the flags that were given on the command line.
func parseCLIConfig(args []string, stderr io.Writer, getenv func(string) string) (configpkg.Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	defaults := configpkg.DefaultConfig()

	fs := flag.NewFlagSet("msise00", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		_, _ = fmt.Fprintln(fs.Output(), "Usage: msise00 [flags]")
		_, _ = fmt.Fprintln(fs.Output(), "Run the MSISE-00 atmospheric model over times, altitudes and a lat/lon grid.")
		_, _ = fmt.Fprintln(fs.Output())
		fs.PrintDefaults()
	}

	var (
		times       stringListFlag
		altkm       floatListFlag
		latlon      floatListFlag
		gridSpacing floatListFlag
		plotDir     string
		output      string
		format      string
		configPath  string
		quiet       bool
		verbose     bool
		logLevel    string
		f107s       float64
		f107        float64
		ap          float64
	)
	fs.Var(&times, "t", "time(s): one instant, start stop for hourly steps, or a list (default now minus 180 days)")
	fs.Var(&times, "time", "alias of -t")
	fs.Var(&altkm, "a", "altitude(s) km: one value, start stop step, or a list (default 200)")
	fs.Var(&altkm, "altkm", "alias of -a")
	fs.Var(&latlon, "c", "geodetic lat lon pair (default whole-world grid)")
	fs.Var(&latlon, "latlon", "alias of -c")
	fs.Var(&gridSpacing, "gs", "whole-world grid spacing lat lon in degrees (default 10 10)")
	fs.StringVar(&plotDir, "o", "", "directory to write plots to")
	fs.StringVar(&plotDir, "odir", "", "alias of -o")
	fs.StringVar(&output, "w", "", "NetCDF file to write the result to; a leading ~/ expands to your home directory (~user is not supported)")
	fs.StringVar(&format, "format", defaults.Format, "output format: netcdf4 or classic")
	fs.StringVar(&configPath, "config", "", "YAML run file (default "+configpkg.DefaultFile+" when present)")
	fs.BoolVar(&quiet, "q", false, "do not plot")
	fs.BoolVar(&quiet, "quiet", false, "alias of -q")
	fs.BoolVar(&verbose, "verbose", false, "debug logging to stderr")
	fs.StringVar(&logLevel, "log-level", defaults.LogLevel, "minimum log level: debug, info, warn or error")
	fs.Float64Var(&f107s, "f107s", 0, "81-day centered F10.7 solar flux forwarded to the model")
	fs.Float64Var(&f107, "f107", 0, "previous-day F10.7 solar flux forwarded to the model")
	fs.Float64Var(&ap, "Ap", 0, "daily Ap geomagnetic index forwarded to the model")

	if err := fs.Parse(normalizeArgs(args)); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return configpkg.Config{}, err
		}
		return configpkg.Config{}, &ParseError{Err: err}
	}
	if fs.NArg() > 0 {
		return configpkg.Config{}, parseErrorf("unexpected argument %q", fs.Arg(0))
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg := defaults
	if configPath == "" {
		if _, err := os.Stat(configpkg.DefaultFile); err == nil {
			configPath = configpkg.DefaultFile
		}
	}
	if configPath != "" {
		loaded, err := configpkg.LoadFile(configPath, cfg)
		if err != nil {
			return configpkg.Config{}, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	cfg = configpkg.ApplyEnv(cfg, getenv)

	if set["t"] || set["time"] {
		cfg.Times = times.values()
	}
	if set["a"] || set["altkm"] {
		cfg.AltKm = altkm.values()
	}
	if set["c"] || set["latlon"] {
		cfg.LatLon = latlon.values()
	}
	if set["gs"] {
		cfg.GridSpacing = gridSpacing.values()
	}
	if set["o"] || set["odir"] {
		cfg.PlotDir = plotDir
	}
	if set["w"] {
		cfg.Output = output
	}
	if set["format"] {
		cfg.Format = format
	}
	if set["q"] || set["quiet"] {
		cfg.Quiet = quiet
	}
	if set["verbose"] {
		cfg.Verbose = verbose
	}
	if set["log-level"] {
		cfg.LogLevel = logLevel
	}
	if set["f107s"] || set["f107"] || set["Ap"] {
		indices := configpkg.Indices{}
		if cfg.Indices != nil {
			indices = *cfg.Indices
		}
		if set["f107s"] {
			indices.F107s = f107s
		}
		if set["f107"] {
			indices.F107 = f107
		}
		if set["Ap"] {
			indices.Ap = ap
		}
		cfg.Indices = &indices
	}

	cfg = configpkg.Normalize(cfg)
	if err := configpkg.Validate(cfg); err != nil {
		return configpkg.Config{}, &ParseError{Err: err}
	}
	return cfg, nil
}

// normalizeArgs rewrites "-a 100 500 50" into "-a=100 -a=500 -a=50" for
// every multi-value flag so the flag package sees one value per flag.
func normalizeArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			out = append(out, args[i:]...)
			break
		}
		name, ok := flagName(arg)
		if !ok || strings.Contains(name, "=") || !multiValueFlags[name] {
			out = append(out, arg)
			continue
		}

		j := i + 1
		for ; j < len(args) && !looksLikeFlag(args[j]); j++ {
			out = append(out, arg+"="+args[j])
		}
		if j == i+1 {
			// no values; let the flag package report it
			out = append(out, arg)
		}
		i = j - 1
	}
	return out
}

func flagName(arg string) (string, bool) {
	if !looksLikeFlag(arg) {
		return "", false
	}
	return strings.TrimLeft(arg, "-"), true
}

// looksLikeFlag is true for "-x" and "--x" but not for negative numbers.
func looksLikeFlag(arg string) bool {
	if len(arg) < 2 || arg[0] != '-' {
		return false
	}
	if _, err := strconv.ParseFloat(arg, 64); err == nil {
		return false
	}
	return true
}

// stringListFlag collects repeated values. Commas are kept because time
// strings such as "Jan 2, 2018" contain them.
type stringListFlag []string

func (f *stringListFlag) String() string {
	if f == nil {
		return ""
	}
	return strings.Join(*f, " ")
}

func (f *stringListFlag) Set(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("empty value")
	}
	*f = append(*f, value)
	return nil
}

func (f stringListFlag) values() []string {
	out := make([]string, len(f))
	copy(out, f)
	return out
}

// floatListFlag collects repeated or comma-separated numbers.
type floatListFlag []float64

func (f *floatListFlag) String() string {
	if f == nil {
		return ""
	}
	parts := make([]string, len(*f))
	for i, v := range *f {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

func (f *floatListFlag) Set(value string) error {
	for _, part := range strings.Split(value, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", part)
		}
		*f = append(*f, v)
	}
	return nil
}

func (f floatListFlag) values() []float64 {
	out := make([]float64, len(f))
	copy(out, f)
	return out
}
