package coords

import (
	"errors"
	"fmt"
	"math"
)

// MaxPoints caps the length of any generated axis.
const MaxPoints = 100000

// ResolveAltitudes expands an altitude specification in km.
//
// One value is a single altitude, three values are a stop-exclusive
// (start, stop, step) range, and any other count is used verbatim.
func ResolveAltitudes(spec []float64) ([]float64, error) {
	switch len(spec) {
	case 0:
		return nil, errors.New("no altitude given")
	case 1:
		return []float64{spec[0]}, nil
	case 3:
		alts, err := Arange(spec[0], spec[1], spec[2])
		if err != nil {
			return nil, fmt.Errorf("altitude range: %w", err)
		}
		if len(alts) == 0 {
			return nil, fmt.Errorf("altitude range %g..%g step %g is empty", spec[0], spec[1], spec[2])
		}
		return alts, nil
	default:
		out := make([]float64, len(spec))
		copy(out, spec)
		return out, nil
	}
}

// Arange returns start, start+step, ... up to but excluding stop.
func Arange(start, stop, step float64) ([]float64, error) {
	if step == 0 {
		return nil, errors.New("step cannot be zero")
	}
	if !finite(start) || !finite(stop) || !finite(step) {
		return nil, errors.New("range bounds must be finite")
	}
	count := math.Ceil((stop - start) / step)
	if count <= 0 {
		return []float64{}, nil
	}
	if count > MaxPoints {
		return nil, fmt.Errorf("range %g..%g step %g has more than %d points", start, stop, step, MaxPoints)
	}
	n := int(count)
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
