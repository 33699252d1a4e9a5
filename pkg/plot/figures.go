package plot

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/minhyannv/msise00-go/pkg/atmos"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
)

const stampLayout = "20060102T150405"

// plotProfiles draws, per time step, the species densities and the
// temperatures against altitude.
func (g *Gonum) plotProfiles(ctx context.Context, ds *atmos.Dataset, dir string) ([]string, error) {
	var files []string
	for t, ts := range ds.Times {
		if err := ctx.Err(); err != nil {
			return files, err
		}
		title := fmt.Sprintf("%s  lat %.2f lon %.2f", ts.Format(time.RFC3339), ds.Lat[0], ds.Lon[0])

		p, ok, err := profilePlot(ds, t, atmos.NumberDensities, true)
		if err != nil {
			return files, err
		}
		if ok {
			p.Title.Text = "Number density  " + title
			p.X.Label.Text = "density [m^-3]"
			name := filepath.Join(dir, fmt.Sprintf("density_%s.png", ts.Format(stampLayout)))
			if err := p.Save(g.opts.Width, g.opts.Height, name); err != nil {
				return files, fmt.Errorf("save %s: %w", name, err)
			}
			files = append(files, name)
		}

		p, ok, err = profilePlot(ds, t, atmos.Temperatures, false)
		if err != nil {
			return files, err
		}
		if ok {
			p.Title.Text = "Temperature  " + title
			p.X.Label.Text = "temperature [K]"
			name := filepath.Join(dir, fmt.Sprintf("temperature_%s.png", ts.Format(stampLayout)))
			if err := p.Save(g.opts.Width, g.opts.Height, name); err != nil {
				return files, fmt.Errorf("save %s: %w", name, err)
			}
			files = append(files, name)
		}
	}
	return files, nil
}

// profilePlot returns ok=false when none of names has a drawable sample.
func profilePlot(ds *atmos.Dataset, t int, names []string, logX bool) (*plot.Plot, bool, error) {
	p := plot.New()
	p.Y.Label.Text = "altitude [km]"
	if logX {
		p.X.Scale = plot.LogScale{}
		p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	}

	drawn := 0
	for _, name := range names {
		if _, ok := ds.Variable(name); !ok {
			continue
		}
		xys := profilePoints(ds, name, t, logX)
		if len(xys) == 0 {
			continue
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, false, fmt.Errorf("line %s: %w", name, err)
		}
		line.Color = plotutil.Color(drawn)
		p.Add(line)
		p.Legend.Add(name, line)
		drawn++
	}
	return p, drawn > 0, nil
}

// profilePoints collects (value, altitude) pairs, dropping NaN and, on a log
// axis, non-positive values.
func profilePoints(ds *atmos.Dataset, name string, t int, positiveOnly bool) plotter.XYs {
	var xys plotter.XYs
	for a, alt := range ds.AltKm {
		v, _ := ds.At(name, t, a, 0, 0)
		if math.IsNaN(v) || math.IsInf(v, 0) || (positiveOnly && v <= 0) {
			continue
		}
		xys = append(xys, plotter.XY{X: v, Y: alt})
	}
	return xys
}

// plotMaps draws one lat/lon heat map per variable at the first time and
// altitude.
func (g *Gonum) plotMaps(ctx context.Context, ds *atmos.Dataset, dir string) ([]string, error) {
	const t, a = 0, 0
	ts := ds.Times[t]
	var files []string
	for _, name := range ds.VariableNames() {
		if err := ctx.Err(); err != nil {
			return files, err
		}
		v, _ := ds.Variable(name)
		slice := gridSlice{ds: ds, v: v, t: t, a: a}
		lo, hi, ok := slice.zRange()
		if !ok {
			continue
		}

		hm := plotter.NewHeatMap(slice, palette.Heat(12, 1))
		hm.Min, hm.Max = lo, hi

		p := plot.New()
		p.Title.Text = fmt.Sprintf("%s [%s]  %s  %.1f km", name, v.Units, ts.Format(time.RFC3339), ds.AltKm[a])
		p.X.Label.Text = "geodetic longitude [deg]"
		p.Y.Label.Text = "geodetic latitude [deg]"
		p.Add(hm)

		fn := filepath.Join(dir, fmt.Sprintf("map_%s_%s_%.0fkm.png", name, ts.Format(stampLayout), ds.AltKm[a]))
		if err := p.Save(g.opts.Width, g.opts.Height, fn); err != nil {
			return files, fmt.Errorf("save %s: %w", fn, err)
		}
		files = append(files, fn)
	}
	return files, nil
}

// gridSlice exposes one (time, altitude) plane as a plotter.GridXYZ.
type gridSlice struct {
	ds   *atmos.Dataset
	v    *atmos.Variable
	t, a int
}

func (s gridSlice) Dims() (c, r int) { return len(s.ds.Lon), len(s.ds.Lat) }
func (s gridSlice) X(c int) float64  { return s.ds.Lon[c] }
func (s gridSlice) Y(r int) float64  { return s.ds.Lat[r] }

func (s gridSlice) Z(c, r int) float64 {
	return s.v.Data[s.ds.Index(s.t, s.a, r, c)]
}

// zRange returns the finite value range, widened when flat.
func (s gridSlice) zRange() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	cols, rows := s.Dims()
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			z := s.Z(c, r)
			if math.IsNaN(z) || math.IsInf(z, 0) {
				continue
			}
			lo = math.Min(lo, z)
			hi = math.Max(hi, z)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 0, false
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}
	return lo, hi, true
}
