package model

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/minhyannv/msise00-go/pkg/atmos"
	"github.com/minhyannv/msise00-go/pkg/config"
)

// TestHelperProcess stands in for the model command.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	var req wireRequest
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		fmt.Fprintf(os.Stderr, "bad request: %v", err)
		os.Exit(4)
	}
	switch os.Getenv("MODEL_HELPER_MODE") {
	case "fail":
		fmt.Fprint(os.Stderr, "ImportError: No module named msise00")
		os.Exit(1)
	case "garbage":
		fmt.Fprint(os.Stdout, "not json")
		os.Exit(0)
	case "short":
		resp := wireResponse{
			Time:      req.Times,
			AltKm:     req.AltKm,
			Lat:       req.Lat,
			Lon:       req.Lon,
			Variables: map[string]wireVariable{"Tn": {Units: "K", Data: []*float64{new(float64)}}},
		}
		_ = json.NewEncoder(os.Stdout).Encode(resp)
		os.Exit(0)
	}

	n := len(req.Times) * len(req.AltKm) * len(req.Lat) * len(req.Lon)
	tn := make([]*float64, n)
	he := make([]*float64, n)
	for i := 0; i < n; i++ {
		v := 700 + float64(i)
		d := 1e12 / float64(i+1)
		tn[i] = &v
		he[i] = &d
	}
	tn[0] = nil
	attrs := map[string]float64{}
	if req.Indices != nil {
		attrs["f107"] = req.Indices.F107
	}
	resp := wireResponse{
		Time:  req.Times,
		AltKm: req.AltKm,
		Lat:   req.Lat,
		Lon:   req.Lon,
		Variables: map[string]wireVariable{
			"Tn": {Units: "K", Data: tn},
			"He": {Data: he},
		},
		Attrs: attrs,
	}
	_ = json.NewEncoder(os.Stdout).Encode(resp)
	os.Exit(0)
}

func helperModel(mode string) *Exec {
	return NewExec(ExecOptions{
		Command: os.Args[0],
		Args:    []string{"-test.run=TestHelperProcess"},
		Env:     []string{"GO_WANT_HELPER_PROCESS=1", "MODEL_HELPER_MODE=" + mode},
	})
}

func sampleRequest() Request {
	return Request{
		Times: []time.Time{time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)},
		AltKm: []float64{100, 200, 300},
		Lat:   []float64{65},
		Lon:   []float64{-148},
	}
}

func TestExecDecodesDataset(t *testing.T) {
	req := sampleRequest()
	req.Indices = &config.Indices{F107s: 150, F107: 142, Ap: 4}

	ds, err := helperModel("ok").Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ds.Shape() != [4]int{1, 3, 1, 1} {
		t.Fatalf("unexpected shape %v", ds.Shape())
	}
	if !ds.Times[0].Equal(req.Times[0]) {
		t.Fatalf("time not round-tripped: %v", ds.Times)
	}
	he, ok := ds.Variable(atmos.He)
	if !ok || he.Units != "m^-3" {
		t.Fatalf("expected He with default units, got %+v", he)
	}
	tn, _ := ds.At(atmos.Tn, 0, 0, 0, 0)
	if !math.IsNaN(tn) {
		t.Fatalf("null sample should decode as NaN, got %v", tn)
	}
	if v, _ := ds.At(atmos.Tn, 0, 2, 0, 0); v != 702 {
		t.Fatalf("unexpected Tn at 300 km: %v", v)
	}
	if ds.Attrs["f107"] != 142 {
		t.Fatalf("indices not forwarded: %v", ds.Attrs)
	}
}

func TestExecSurfacesModelFailure(t *testing.T) {
	_, err := helperModel("fail").Run(context.Background(), sampleRequest())
	if err == nil || !strings.Contains(err.Error(), "No module named msise00") {
		t.Fatalf("expected model stderr in error, got %v", err)
	}
}

func TestExecRejectsBadOutput(t *testing.T) {
	if _, err := helperModel("garbage").Run(context.Background(), sampleRequest()); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := helperModel("short").Run(context.Background(), sampleRequest()); err == nil {
		t.Fatal("expected shape mismatch error")
	}
}

func TestWireRequestUsesUTC(t *testing.T) {
	loc := time.FixedZone("AKST", -9*3600)
	req := Request{Times: []time.Time{time.Date(2018, 1, 1, 3, 0, 0, 0, loc)}}
	got := newWireRequest(req)
	if got.Times[0] != "2018-01-01T12:00:00Z" {
		t.Fatalf("unexpected wire time %q", got.Times[0])
	}
}

func TestBridgeScriptEmbedded(t *testing.T) {
	if !strings.Contains(BridgeScript(), "msise00.run") {
		t.Fatal("embedded bridge script does not call msise00.run")
	}
}
