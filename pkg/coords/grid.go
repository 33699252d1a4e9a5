package coords

import (
	"fmt"
	"math"
)

// Geodetic limits of the world grid, in degrees.
const (
	MinLat = -90.0
	MaxLat = 90.0
	MinLon = -180.0
	MaxLon = 180.0
)

// Grid holds the latitude and longitude axes of a lat/lon mesh.
type Grid struct {
	Lat []float64
	Lon []float64
}

// WorldGrid builds a whole-world grid at the given spacing. Both axes start
// at the lower geodetic limit and include the upper limit when the spacing
// divides the range evenly.
func WorldGrid(latStep, lonStep float64) (Grid, error) {
	if !(latStep > 0) || !(lonStep > 0) || math.IsInf(latStep, 0) || math.IsInf(lonStep, 0) {
		return Grid{}, fmt.Errorf("grid spacing must be positive, got (%g, %g)", latStep, lonStep)
	}
	lat, err := closedAxis(MinLat, MaxLat, latStep)
	if err != nil {
		return Grid{}, fmt.Errorf("latitude: %w", err)
	}
	lon, err := closedAxis(MinLon, MaxLon, lonStep)
	if err != nil {
		return Grid{}, fmt.Errorf("longitude: %w", err)
	}
	return Grid{Lat: lat, Lon: lon}, nil
}

// Point returns the single-location grid for an explicit coordinate.
func Point(lat, lon float64) (Grid, error) {
	if lat < MinLat || lat > MaxLat || math.IsNaN(lat) {
		return Grid{}, fmt.Errorf("latitude %g outside [%g, %g]", lat, MinLat, MaxLat)
	}
	if math.IsNaN(lon) || math.IsInf(lon, 0) {
		return Grid{}, fmt.Errorf("longitude %g is not finite", lon)
	}
	return Grid{Lat: []float64{lat}, Lon: []float64{lon}}, nil
}

// Size is the number of lat/lon points in the mesh.
func (g Grid) Size() int {
	return len(g.Lat) * len(g.Lon)
}

// Mesh expands the axes to 2-D arrays indexed [lat][lon].
func (g Grid) Mesh() (lat, lon [][]float64) {
	lat = make([][]float64, len(g.Lat))
	lon = make([][]float64, len(g.Lat))
	for i, la := range g.Lat {
		lat[i] = make([]float64, len(g.Lon))
		lon[i] = make([]float64, len(g.Lon))
		for j, lo := range g.Lon {
			lat[i][j] = la
			lon[i][j] = lo
		}
	}
	return lat, lon
}

func closedAxis(lo, hi, step float64) ([]float64, error) {
	// tolerance keeps hi when step divides the range up to rounding
	const eps = 1e-9
	count := math.Floor((hi-lo)/step+eps) + 1
	if count > MaxPoints {
		return nil, fmt.Errorf("spacing %g gives more than %d points", step, MaxPoints)
	}
	out := make([]float64, int(count))
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out, nil
}
