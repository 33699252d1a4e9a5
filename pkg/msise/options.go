package msise

import (
	"io"

	loggerpkg "github.com/minhyannv/msise00-go/pkg/logger"
	"github.com/minhyannv/msise00-go/pkg/model"
	"github.com/minhyannv/msise00-go/pkg/plot"
)

// Option configures optional runtime dependencies for Runner.
type Option func(*runnerDeps)

type runnerDeps struct {
	logger       loggerpkg.Logger
	model        model.Model
	plotter      plot.Plotter
	out          io.Writer
	availability *plot.Availability
}

// WithLogger injects a logger dependency.
func WithLogger(l loggerpkg.Logger) Option {
	return func(d *runnerDeps) {
		d.logger = l
	}
}

// WithModel replaces the subprocess model.
func WithModel(m model.Model) Option {
	return func(d *runnerDeps) {
		d.model = m
	}
}

// WithPlotter replaces the gonum plotter.
func WithPlotter(p plot.Plotter) Option {
	return func(d *runnerDeps) {
		d.plotter = p
	}
}

// WithOutput sets where progress lines are printed.
func WithOutput(w io.Writer) Option {
	return func(d *runnerDeps) {
		d.out = w
	}
}

// WithAvailability skips the viewer lookup and uses a instead.
func WithAvailability(a plot.Availability) Option {
	return func(d *runnerDeps) {
		d.availability = &a
	}
}
