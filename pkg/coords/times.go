package coords

import (
	"errors"
	"fmt"
	"time"

	"github.com/araddon/dateparse"
)

// TimeStep is the spacing of a start/stop time range.
const TimeStep = time.Hour

// ParseTime reads a timestamp in any common layout, interpreting zone-less
// values as UTC.
func ParseTime(s string) (time.Time, error) {
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t.UTC(), nil
}

// ResolveTimes expands a time specification.
//
// One value is a single instant, two values are an hourly range from start up
// to but excluding stop, and three or more values are used verbatim.
func ResolveTimes(spec []string) ([]time.Time, error) {
	if len(spec) == 0 {
		return nil, errors.New("no time given")
	}
	parsed := make([]time.Time, len(spec))
	for i, s := range spec {
		t, err := ParseTime(s)
		if err != nil {
			return nil, err
		}
		parsed[i] = t
	}
	if len(parsed) != 2 {
		return parsed, nil
	}
	return HourlyRange(parsed[0], parsed[1])
}

// HourlyRange returns start, start+1h, ... before stop. Equal bounds yield the
// single start instant.
func HourlyRange(start, stop time.Time) ([]time.Time, error) {
	if stop.Before(start) {
		return nil, fmt.Errorf("time range stop %s is before start %s", stop.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	if stop.Equal(start) {
		return []time.Time{start}, nil
	}
	var out []time.Time
	for t := start; t.Before(stop); t = t.Add(TimeStep) {
		out = append(out, t)
	}
	return out, nil
}
