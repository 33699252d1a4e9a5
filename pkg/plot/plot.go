// Package plot renders model results to image files and hands them to an
// external viewer.
package plot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/minhyannv/msise00-go/pkg/atmos"
	"github.com/minhyannv/msise00-go/pkg/execx"
	loggerpkg "github.com/minhyannv/msise00-go/pkg/logger"
	"gonum.org/v1/plot/vg"
)

// Plotter renders a dataset and displays the result.
type Plotter interface {
	// Plot writes figures for ds into odir, or a temporary directory when
	// odir is empty, and returns the file paths.
	Plot(ctx context.Context, ds *atmos.Dataset, odir string) ([]string, error)
	// Show displays files and blocks until the viewer exits.
	Show(ctx context.Context, files []string) error
}

// ViewerNone disables plotting when set as the viewer.
const ViewerNone = "none"

// Availability is the result of the startup plotting check.
type Availability struct {
	OK         bool
	Viewer     string
	ViewerArgs []string
	Reason     string
}

// Options configures the gonum renderer and its viewer.
type Options struct {
	Viewer     string
	ViewerArgs []string
	Width      vg.Length
	Height     vg.Length
	Verbose    bool
	Logger     loggerpkg.Logger
}

type viewer struct {
	name string
	args []string
}

// defaultViewers are tried in order. Each blocks until its window closes;
// xdg-open and a bare open return at once and are not used.
func defaultViewers(goos string) []viewer {
	if goos == "darwin" {
		return []viewer{{name: "open", args: []string{"-W", "-n"}}}
	}
	return []viewer{{name: "feh"}, {name: "eog"}, {name: "display"}}
}

// Check decides once whether figures can be displayed.
func Check(name string) Availability {
	return check(runtime.GOOS, name)
}

func check(goos, name string) Availability {
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, ViewerNone) {
		return Availability{Reason: "plotting disabled by configuration"}
	}
	if name != "" {
		path, err := execx.LookPath(name)
		if err != nil {
			return Availability{Reason: fmt.Sprintf("viewer %q not found: %v", name, err)}
		}
		return Availability{OK: true, Viewer: path}
	}
	candidates := defaultViewers(goos)
	tried := make([]string, 0, len(candidates))
	for _, v := range candidates {
		if path, err := execx.LookPath(v.name); err == nil {
			return Availability{OK: true, Viewer: path, ViewerArgs: v.args}
		}
		tried = append(tried, v.name)
	}
	return Availability{Reason: fmt.Sprintf("no image viewer found (tried %s)", strings.Join(tried, ", "))}
}

// Gonum draws figures with gonum/plot.
type Gonum struct {
	opts   Options
	runner execx.Runner
	// tempDirs were created by Plot and are removed once shown.
	tempDirs []string
}

// New builds a Gonum plotter.
func New(opts Options) *Gonum {
	if opts.Logger == nil {
		opts.Logger = loggerpkg.NopLogger{}
	}
	if opts.Width <= 0 {
		opts.Width = 8 * vg.Inch
	}
	if opts.Height <= 0 {
		opts.Height = 6 * vg.Inch
	}
	return &Gonum{
		opts:   opts,
		runner: execx.Runner{Verbose: opts.Verbose, Logger: opts.Logger},
	}
}

// Plot implements Plotter.
func (g *Gonum) Plot(ctx context.Context, ds *atmos.Dataset, odir string) ([]string, error) {
	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("plot: %w", err)
	}
	dir, err := outputDir(odir)
	if err != nil {
		return nil, err
	}
	if odir == "" {
		g.tempDirs = append(g.tempDirs, dir)
	}

	var files []string
	switch {
	case ds.IsGrid():
		files, err = g.plotMaps(ctx, ds, dir)
	case ds.IsProfile():
		files, err = g.plotProfiles(ctx, ds, dir)
	default:
		return nil, fmt.Errorf("plot: cannot map a %dx%d lat/lon grid", len(ds.Lat), len(ds.Lon))
	}
	if err != nil {
		g.removeTempDirs()
		return nil, err
	}
	loggerpkg.Debug(g.opts.Verbose, g.opts.Logger, "figures written", map[string]any{
		"dir":   dir,
		"count": len(files),
	})
	return files, nil
}

// Show implements Plotter. Temporary figure directories are removed after
// the viewer exits.
func (g *Gonum) Show(ctx context.Context, files []string) error {
	defer g.removeTempDirs()
	if len(files) == 0 {
		return nil
	}
	if g.opts.Viewer == "" {
		return errors.New("show: no viewer configured")
	}
	args := append(append([]string{}, g.opts.ViewerArgs...), files...)
	res := g.runner.Run(ctx, execx.Command{Name: g.opts.Viewer, Args: args})
	if err := res.Err(); err != nil {
		return fmt.Errorf("show: %w", err)
	}
	return nil
}

func outputDir(odir string) (string, error) {
	if odir == "" {
		dir, err := os.MkdirTemp("", "msise00-")
		if err != nil {
			return "", fmt.Errorf("plot: %w", err)
		}
		return dir, nil
	}
	if err := os.MkdirAll(odir, 0o755); err != nil {
		return "", fmt.Errorf("plot: %w", err)
	}
	return odir, nil
}

func (g *Gonum) removeTempDirs() {
	for _, dir := range g.tempDirs {
		if err := os.RemoveAll(dir); err != nil {
			loggerpkg.Warn(g.opts.Logger, "cannot remove figure directory", map[string]any{"dir": dir, "error": err.Error()})
		}
	}
	g.tempDirs = nil
}
