// Package msise runs the MSISE-00 pipeline: resolve arguments, build the
// grid, call the model, then save and plot the result.
package msise

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/minhyannv/msise00-go/pkg/atmos"
	configpkg "github.com/minhyannv/msise00-go/pkg/config"
	"github.com/minhyannv/msise00-go/pkg/coords"
	loggerpkg "github.com/minhyannv/msise00-go/pkg/logger"
	"github.com/minhyannv/msise00-go/pkg/model"
	"github.com/minhyannv/msise00-go/pkg/ncio"
	"github.com/minhyannv/msise00-go/pkg/plot"
	"gonum.org/v1/plot/vg"
)

// Runner holds the resolved configuration and collaborators for one run.
type Runner struct {
	config       configpkg.Config
	model        model.Model
	plotter      plot.Plotter
	availability plot.Availability

	out     io.Writer
	logger  loggerpkg.Logger
	verbose bool
}

// Result summarizes a completed run.
type Result struct {
	Dataset *atmos.Dataset
	// Output is the expanded path written, empty when nothing was saved.
	Output  string
	Figures []string
	Plotted bool
}

// New builds a Runner. Plotting availability is decided here, once.
func New(cfg configpkg.Config, opts ...Option) (*Runner, error) {
	cfg = configpkg.Normalize(cfg)
	if err := configpkg.Validate(cfg); err != nil {
		return nil, err
	}

	deps := runnerDeps{logger: loggerpkg.NopLogger{}, out: os.Stdout}
	for _, opt := range opts {
		if opt != nil {
			opt(&deps)
		}
	}

	var avail plot.Availability
	if deps.availability != nil {
		avail = *deps.availability
	} else {
		avail = plot.Check(cfg.Plot.Viewer)
	}
	loggerpkg.Debug(cfg.Verbose, deps.logger, "plot availability", map[string]any{
		"ok":     avail.OK,
		"viewer": avail.Viewer,
		"reason": avail.Reason,
	})

	if deps.model == nil {
		deps.model = model.NewExec(model.ExecOptions{
			Command: cfg.Model.Command,
			Args:    cfg.Model.Args,
			Timeout: cfg.Model.Timeout,
			Verbose: cfg.Verbose,
			Logger:  deps.logger,
		})
	}
	if deps.plotter == nil {
		viewerArgs := cfg.Plot.ViewerArgs
		if len(viewerArgs) == 0 {
			viewerArgs = avail.ViewerArgs
		}
		deps.plotter = plot.New(plot.Options{
			Viewer:     avail.Viewer,
			ViewerArgs: viewerArgs,
			Width:      vg.Length(cfg.Plot.WidthInch) * vg.Inch,
			Height:     vg.Length(cfg.Plot.HeightInch) * vg.Inch,
			Verbose:    cfg.Verbose,
			Logger:     deps.logger,
		})
	}

	return &Runner{
		config:       cfg,
		model:        deps.model,
		plotter:      deps.plotter,
		availability: avail,
		out:          deps.out,
		logger:       deps.logger,
		verbose:      cfg.Verbose,
	}, nil
}

// Run executes the pipeline once.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	altkm, err := coords.ResolveAltitudes(r.config.AltKm)
	if err != nil {
		return Result{}, fmt.Errorf("altitude: %w", err)
	}
	r.printf("using altitudes from %.1f to %.1f km\n", altkm[0], altkm[len(altkm)-1])

	grid, err := r.grid(altkm[0])
	if err != nil {
		return Result{}, err
	}

	times, err := coords.ResolveTimes(r.config.Times)
	if err != nil {
		return Result{}, fmt.Errorf("time: %w", err)
	}
	loggerpkg.Debug(r.verbose, r.logger, "calling model", map[string]any{
		"times": len(times),
		"altkm": len(altkm),
		"lat":   len(grid.Lat),
		"lon":   len(grid.Lon),
	})

	ds, err := r.model.Run(ctx, model.Request{
		Times:   times,
		AltKm:   altkm,
		Lat:     grid.Lat,
		Lon:     grid.Lon,
		Indices: r.config.Indices,
	})
	if err != nil {
		return Result{}, fmt.Errorf("model: %w", err)
	}
	if ds == nil {
		return Result{}, errors.New("model: no result")
	}
	if err := ds.Validate(); err != nil {
		return Result{}, fmt.Errorf("model: %w", err)
	}
	res := Result{Dataset: ds}

	if r.config.Output != "" {
		path, err := ncio.ExpandPath(r.config.Output)
		if err != nil {
			return res, err
		}
		r.printf("saving %s\n", path)
		if err := ncio.Save(path, r.config.Format, ds); err != nil {
			return res, err
		}
		res.Output = path
		r.logStored(path)
	}

	if !r.availability.OK || r.config.Quiet {
		r.printf("skipped plots\n")
		if !r.availability.OK {
			loggerpkg.Warn(r.logger, "plotting unavailable", map[string]any{"reason": r.availability.Reason})
		}
		return res, nil
	}

	files, err := r.plotter.Plot(ctx, ds, r.config.PlotDir)
	if err != nil {
		return res, err
	}
	res.Figures = files
	if err := r.plotter.Show(ctx, files); err != nil {
		return res, err
	}
	res.Plotted = true
	return res, nil
}

// grid returns the explicit point or the whole-world grid.
func (r *Runner) grid(altkm float64) (coords.Grid, error) {
	if len(r.config.LatLon) == 2 {
		g, err := coords.Point(r.config.LatLon[0], r.config.LatLon[1])
		if err != nil {
			return coords.Grid{}, fmt.Errorf("latlon: %w", err)
		}
		return g, nil
	}

	r.printf("auto whole-world grid mode at %.1f km altitude\n", altkm)
	g, err := coords.WorldGrid(r.config.GridSpacing[0], r.config.GridSpacing[1])
	if err != nil {
		return coords.Grid{}, fmt.Errorf("grid: %w", err)
	}
	loggerpkg.Debugf(r.verbose, r.logger, "world grid %dx%d", len(g.Lat), len(g.Lon))
	return g, nil
}

func (r *Runner) logStored(path string) {
	if !r.verbose {
		return
	}
	vars, err := ncio.ReadMetadata(path, r.config.Format)
	if err != nil {
		loggerpkg.Warn(r.logger, "cannot read back output", map[string]any{"path": path, "error": err.Error()})
		return
	}
	names := make([]string, 0, len(vars))
	for _, v := range vars {
		names = append(names, v.Name)
	}
	loggerpkg.Debug(r.verbose, r.logger, "output written", map[string]any{
		"path":      path,
		"variables": names,
	})
}

func (r *Runner) printf(format string, args ...any) {
	if r.out == nil {
		return
	}
	_, _ = fmt.Fprintf(r.out, format, args...)
}
