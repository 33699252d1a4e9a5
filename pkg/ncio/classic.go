package ncio

import (
	"fmt"
	"os"
	"sort"

	"github.com/ctessum/cdf"
	"github.com/minhyannv/msise00-go/pkg/atmos"
)

// writeClassic writes ds as a netCDF classic file without the C library.
func writeClassic(path string, ds *atmos.Dataset) (err error) {
	shape := ds.Shape()
	dims := atmos.DimNames[:]
	h := cdf.NewHeader(dims, shape[:])
	h.AddAttribute("", "source", "MSISE-00")

	attrNames := make([]string, 0, len(ds.Attrs))
	for k := range ds.Attrs {
		attrNames = append(attrNames, k)
	}
	sort.Strings(attrNames)
	for _, k := range attrNames {
		h.AddAttribute("", k, []float64{ds.Attrs[k]})
	}

	for _, name := range atmos.DimNames {
		h.AddVariable(name, []string{name}, []float64{0})
		h.AddAttribute(name, "units", coordUnits[name])
	}
	names := ds.VariableNames()
	for _, name := range names {
		h.AddVariable(name, dims, []float64{0})
		if units := ds.Variables[name].Units; units != "" {
			h.AddAttribute(name, "units", units)
		}
	}
	h.Define()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	cf, err := cdf.Create(f, h)
	if err != nil {
		return fmt.Errorf("write header %s: %w", path, err)
	}
	for i, values := range coordinates(ds) {
		if err := writeClassicVar(cf, atmos.DimNames[i], values); err != nil {
			return err
		}
	}
	for _, name := range names {
		if err := writeClassicVar(cf, name, ds.Variables[name].Data); err != nil {
			return err
		}
	}
	return nil
}

func writeClassicVar(f *cdf.File, name string, data []float64) error {
	end := f.Header.Lengths(name)
	start := make([]int, len(end))
	w := f.Writer(name, start, end)
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write variable %s: %w", name, err)
	}
	return nil
}
