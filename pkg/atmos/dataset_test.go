package atmos

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func sampleDataset(t *testing.T) *Dataset {
	t.Helper()
	times := []time.Time{
		time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2018, 1, 1, 1, 0, 0, 0, time.UTC),
	}
	ds := New(times, []float64{100, 200, 300}, []float64{-10, 10}, []float64{0, 90, 180})
	data := make([]float64, ds.Len())
	for i := range data {
		data[i] = float64(i)
	}
	if err := ds.AddVariable(Tn, "", data); err != nil {
		t.Fatalf("AddVariable: %v", err)
	}
	return ds
}

func TestShapeAndIndex(t *testing.T) {
	ds := sampleDataset(t)
	if diff := cmp.Diff([4]int{2, 3, 2, 3}, ds.Shape()); diff != "" {
		t.Fatalf("shape (-want +got):\n%s", diff)
	}
	if ds.Len() != 36 {
		t.Fatalf("expected 36 samples, got %d", ds.Len())
	}
	if got := ds.Index(1, 2, 1, 2); got != 35 {
		t.Fatalf("last index should be 35, got %d", got)
	}
	v, ok := ds.At(Tn, 1, 0, 1, 0)
	if !ok || v != float64(ds.Index(1, 0, 1, 0)) {
		t.Fatalf("At returned %v, %v", v, ok)
	}
	if _, ok := ds.At(Tn, 2, 0, 0, 0); ok {
		t.Fatal("expected out-of-range At to fail")
	}
}

func TestAddVariableFillsUnitsAndChecksLength(t *testing.T) {
	ds := sampleDataset(t)
	tn, _ := ds.Variable(Tn)
	if tn.Units != "K" {
		t.Fatalf("expected default K units, got %q", tn.Units)
	}
	if err := ds.AddVariable(He, "", []float64{1, 2}); err == nil {
		t.Fatal("expected length mismatch error")
	}
}

func TestValidate(t *testing.T) {
	ds := sampleDataset(t)
	if err := ds.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	ds.Variables[He] = &Variable{Name: He, Data: []float64{1}}
	if err := ds.Validate(); err == nil {
		t.Fatal("expected mismatched variable to fail validation")
	}

	empty := New(nil, []float64{200}, []float64{0}, []float64{0})
	if err := empty.Validate(); err == nil {
		t.Fatal("expected empty time dimension to fail validation")
	}
}

func TestVariableNamesOrder(t *testing.T) {
	ds := New([]time.Time{time.Unix(0, 0)}, []float64{200}, []float64{65}, []float64{-148})
	for _, name := range []string{"extra", Tn, Total, He, O2} {
		if err := ds.AddVariable(name, "", []float64{1}); err != nil {
			t.Fatalf("AddVariable(%s): %v", name, err)
		}
	}
	want := []string{He, O2, Total, Tn, "extra"}
	if diff := cmp.Diff(want, ds.VariableNames()); diff != "" {
		t.Fatalf("VariableNames (-want +got):\n%s", diff)
	}
	if !ds.IsProfile() || ds.IsGrid() {
		t.Fatal("single location should be a profile")
	}
}
