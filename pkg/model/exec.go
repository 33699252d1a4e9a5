package model

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/minhyannv/msise00-go/pkg/atmos"
	"github.com/minhyannv/msise00-go/pkg/execx"
	loggerpkg "github.com/minhyannv/msise00-go/pkg/logger"
)

//go:embed bridge.py
var bridgeScript string

var nan = math.NaN()

// ExecOptions configures an Exec model.
type ExecOptions struct {
	// Command defaults to a Python interpreter running the embedded bridge.
	Command string
	Args    []string
	Timeout time.Duration
	// Env is appended to the child's sanitized environment.
	Env     []string
	Verbose bool
	Logger  loggerpkg.Logger
}

// Exec runs the model as a child process speaking JSON over stdin/stdout.
type Exec struct {
	opts   ExecOptions
	runner execx.Runner
}

// NewExec builds an Exec model.
func NewExec(opts ExecOptions) *Exec {
	if opts.Logger == nil {
		opts.Logger = loggerpkg.NopLogger{}
	}
	return &Exec{
		opts:   opts,
		runner: execx.Runner{Verbose: opts.Verbose, Logger: opts.Logger},
	}
}

// BridgeScript returns the embedded Python program used when no command is
// configured.
func BridgeScript() string {
	return bridgeScript
}

func (e *Exec) command() (string, []string, error) {
	if e.opts.Command != "" {
		return e.opts.Command, e.opts.Args, nil
	}
	python, err := execx.ResolvePython()
	if err != nil {
		return "", nil, fmt.Errorf("resolve model interpreter: %w", err)
	}
	return python, []string{"-c", bridgeScript}, nil
}

// Run sends req to the model process and decodes its dataset.
func (e *Exec) Run(ctx context.Context, req Request) (*atmos.Dataset, error) {
	name, args, err := e.command()
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(newWireRequest(req))
	if err != nil {
		return nil, fmt.Errorf("encode model request: %w", err)
	}
	loggerpkg.Debug(e.opts.Verbose, e.opts.Logger, "model request", map[string]any{
		"command": name,
		"times":   len(req.Times),
		"altkm":   len(req.AltKm),
		"lat":     len(req.Lat),
		"lon":     len(req.Lon),
	})

	res := e.runner.Run(ctx, execx.Command{
		Name:    name,
		Args:    args,
		Stdin:   bytes.NewReader(payload),
		Timeout: e.opts.Timeout,
		Env:     e.opts.Env,
	})
	if err := res.Err(); err != nil {
		return nil, fmt.Errorf("run model: %w", err)
	}

	var resp wireResponse
	if err := json.Unmarshal(res.Stdout, &resp); err != nil {
		return nil, fmt.Errorf("decode model output: %w", err)
	}
	ds, err := resp.dataset()
	if err != nil {
		return nil, fmt.Errorf("decode model output: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("model output: %w", err)
	}
	loggerpkg.Debug(e.opts.Verbose, e.opts.Logger, "model finished", map[string]any{
		"duration_ms": res.DurationMs,
		"shape":       ds.Shape(),
		"variables":   ds.VariableNames(),
	})
	return ds, nil
}
