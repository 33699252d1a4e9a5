package model

import (
	"fmt"
	"time"

	"github.com/minhyannv/msise00-go/pkg/atmos"
	"github.com/minhyannv/msise00-go/pkg/config"
)

// wireRequest is written as JSON to the model command's stdin.
type wireRequest struct {
	Times   []string        `json:"times"`
	AltKm   []float64       `json:"altkm"`
	Lat     []float64       `json:"lat"`
	Lon     []float64       `json:"lon"`
	Indices *config.Indices `json:"indices,omitempty"`
}

// wireResponse is read as JSON from the model command's stdout.
type wireResponse struct {
	Time      []string                `json:"time"`
	AltKm     []float64               `json:"alt_km"`
	Lat       []float64               `json:"lat"`
	Lon       []float64               `json:"lon"`
	Variables map[string]wireVariable `json:"variables"`
	Attrs     map[string]float64      `json:"attrs,omitempty"`
}

type wireVariable struct {
	Units string `json:"units,omitempty"`
	// Data may carry null for samples the model could not evaluate.
	Data []*float64 `json:"data"`
}

func newWireRequest(req Request) wireRequest {
	times := make([]string, len(req.Times))
	for i, t := range req.Times {
		times[i] = t.UTC().Format(time.RFC3339)
	}
	return wireRequest{
		Times:   times,
		AltKm:   req.AltKm,
		Lat:     req.Lat,
		Lon:     req.Lon,
		Indices: req.Indices,
	}
}

func (w wireResponse) dataset() (*atmos.Dataset, error) {
	times := make([]time.Time, len(w.Time))
	for i, s := range w.Time {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, fmt.Errorf("time[%d]: %w", i, err)
		}
		times[i] = t.UTC()
	}

	ds := atmos.New(times, w.AltKm, w.Lat, w.Lon)
	for name, v := range w.Variables {
		data := make([]float64, len(v.Data))
		for i, p := range v.Data {
			if p == nil {
				data[i] = nan
				continue
			}
			data[i] = *p
		}
		if err := ds.AddVariable(name, v.Units, data); err != nil {
			return nil, err
		}
	}
	for k, v := range w.Attrs {
		ds.Attrs[k] = v
	}
	return ds, nil
}
