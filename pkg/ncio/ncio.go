// Package ncio persists datasets as netCDF files.
package ncio

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/minhyannv/msise00-go/pkg/atmos"
	"github.com/minhyannv/msise00-go/pkg/config"
	homedir "github.com/mitchellh/go-homedir"
)

// TimeUnits is the CF units string for the stored time coordinate.
const TimeUnits = "seconds since 1970-01-01 00:00:00"

var coordUnits = map[string]string{
	atmos.DimTime: TimeUnits,
	atmos.DimAlt:  "km",
	atmos.DimLat:  "degrees_north",
	atmos.DimLon:  "degrees_east",
}

// ExpandPath resolves a leading ~/ to the current user's home and cleans
// the path. Another user's home (~name/...) is an error.
func ExpandPath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", path, err)
	}
	return filepath.Clean(expanded), nil
}

// Save writes ds to path in the given format, replacing any existing file.
// path must already be expanded.
func Save(path, format string, ds *atmos.Dataset) error {
	if err := ds.Validate(); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("save %s: %w", path, err)
		}
	}
	switch format {
	case config.FormatNetCDF4, "":
		return writeNetCDF4(path, ds)
	case config.FormatClassic:
		return writeClassic(path, ds)
	default:
		return fmt.Errorf("save %s: unknown format %q", path, format)
	}
}

func timeValues(times []time.Time) []float64 {
	out := make([]float64, len(times))
	for i, t := range times {
		out[i] = float64(t.Unix()) + float64(t.Nanosecond())/1e9
	}
	return out
}

// coordinates returns the coordinate variables in DimNames order.
func coordinates(ds *atmos.Dataset) [4][]float64 {
	return [4][]float64{timeValues(ds.Times), ds.AltKm, ds.Lat, ds.Lon}
}
