// Package model is the boundary to the external MSISE-00 implementation.
package model

import (
	"context"
	"time"

	"github.com/minhyannv/msise00-go/pkg/atmos"
	"github.com/minhyannv/msise00-go/pkg/config"
)

// Model evaluates the atmosphere at every combination of the request
// coordinates.
type Model interface {
	Run(ctx context.Context, req Request) (*atmos.Dataset, error)
}

// Request is one model evaluation.
type Request struct {
	Times   []time.Time
	AltKm   []float64
	Lat     []float64
	Lon     []float64
	Indices *config.Indices
}

// Func adapts a plain function to Model.
type Func func(ctx context.Context, req Request) (*atmos.Dataset, error)

// Run calls f.
func (f Func) Run(ctx context.Context, req Request) (*atmos.Dataset, error) {
	return f(ctx, req)
}
