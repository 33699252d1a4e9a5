// Package atmos holds the labeled result of a model run: variables over
// (time, alt_km, lat, lon) with their coordinate values.
package atmos

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Dimension names, in storage order.
const (
	DimTime = "time"
	DimAlt  = "alt_km"
	DimLat  = "lat"
	DimLon  = "lon"
)

// DimNames lists the dimensions in the order data is laid out.
var DimNames = [4]string{DimTime, DimAlt, DimLat, DimLon}

// Variable is one named field, stored row-major over DimNames.
type Variable struct {
	Name  string
	Units string
	Data  []float64
}

// Dataset is a labeled 4-D result.
type Dataset struct {
	Times     []time.Time
	AltKm     []float64
	Lat       []float64
	Lon       []float64
	Variables map[string]*Variable
	Attrs     map[string]float64
}

// New returns an empty dataset over the given coordinates.
func New(times []time.Time, altKm, lat, lon []float64) *Dataset {
	return &Dataset{
		Times:     times,
		AltKm:     altKm,
		Lat:       lat,
		Lon:       lon,
		Variables: make(map[string]*Variable),
		Attrs:     make(map[string]float64),
	}
}

// Shape returns the dimension lengths in DimNames order.
func (d *Dataset) Shape() [4]int {
	return [4]int{len(d.Times), len(d.AltKm), len(d.Lat), len(d.Lon)}
}

// Len is the number of samples in each variable.
func (d *Dataset) Len() int {
	s := d.Shape()
	return s[0] * s[1] * s[2] * s[3]
}

// Index maps (time, alt, lat, lon) indices to a flat offset.
func (d *Dataset) Index(t, a, i, j int) int {
	s := d.Shape()
	return ((t*s[1]+a)*s[2]+i)*s[3] + j
}

// AddVariable stores data under name, filling units from DefaultUnits when
// units is empty.
func (d *Dataset) AddVariable(name, units string, data []float64) error {
	if name == "" {
		return errors.New("variable name is required")
	}
	if len(data) != d.Len() {
		return fmt.Errorf("variable %s has %d values, want %d for shape %v", name, len(data), d.Len(), d.Shape())
	}
	if units == "" {
		units = DefaultUnits(name)
	}
	if d.Variables == nil {
		d.Variables = make(map[string]*Variable)
	}
	d.Variables[name] = &Variable{Name: name, Units: units, Data: data}
	return nil
}

// Variable looks up a variable by name.
func (d *Dataset) Variable(name string) (*Variable, bool) {
	v, ok := d.Variables[name]
	return v, ok
}

// At returns one sample of a variable.
func (d *Dataset) At(name string, t, a, i, j int) (float64, bool) {
	v, ok := d.Variables[name]
	if !ok {
		return 0, false
	}
	s := d.Shape()
	if t < 0 || t >= s[0] || a < 0 || a >= s[1] || i < 0 || i >= s[2] || j < 0 || j >= s[3] {
		return 0, false
	}
	return v.Data[d.Index(t, a, i, j)], true
}

// VariableNames lists variables with the MSISE-00 outputs first in their
// conventional order, then any others alphabetically.
func (d *Dataset) VariableNames() []string {
	names := make([]string, 0, len(d.Variables))
	for name := range d.Variables {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, rj := rank(names[i]), rank(names[j])
		if ri != rj {
			return ri < rj
		}
		return names[i] < names[j]
	})
	return names
}

// Validate checks that every dimension is non-empty and every variable
// matches the dataset shape.
func (d *Dataset) Validate() error {
	if d == nil {
		return errors.New("dataset is nil")
	}
	for i, n := range d.Shape() {
		if n == 0 {
			return fmt.Errorf("dimension %s is empty", DimNames[i])
		}
	}
	if len(d.Variables) == 0 {
		return errors.New("dataset has no variables")
	}
	for name, v := range d.Variables {
		if v == nil {
			return fmt.Errorf("variable %s is nil", name)
		}
		if len(v.Data) != d.Len() {
			return fmt.Errorf("variable %s has %d values, want %d for shape %v", name, len(v.Data), d.Len(), d.Shape())
		}
	}
	return nil
}

// IsProfile reports whether the dataset covers a single location.
func (d *Dataset) IsProfile() bool {
	return len(d.Lat) == 1 && len(d.Lon) == 1
}

// IsGrid reports whether the dataset spans a lat/lon mesh wide enough to map.
func (d *Dataset) IsGrid() bool {
	return len(d.Lat) > 1 && len(d.Lon) > 1
}
