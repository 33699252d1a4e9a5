package ncio

import (
	"fmt"
	"os"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/fhs/go-netcdf/netcdf"
	"github.com/minhyannv/msise00-go/pkg/atmos"
	"github.com/minhyannv/msise00-go/pkg/config"
)

// VariableInfo describes one stored variable.
type VariableInfo struct {
	Name    string
	Dims    []string
	Lengths []int
	Units   string
}

// ReadMetadata lists the coordinate and MSISE-00 variables stored in path.
func ReadMetadata(path, format string) ([]VariableInfo, error) {
	switch format {
	case config.FormatNetCDF4, "":
		return readNetCDF4Metadata(path)
	case config.FormatClassic:
		return readClassicMetadata(path)
	default:
		return nil, fmt.Errorf("read %s: unknown format %q", path, format)
	}
}

func knownNames() []string {
	names := append([]string{}, atmos.DimNames[:]...)
	names = append(names, atmos.NumberDensities...)
	names = append(names, atmos.Total)
	names = append(names, atmos.Temperatures...)
	return names
}

func readNetCDF4Metadata(path string) (mds []VariableInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read %s: netcdf panicked: %v", path, r)
			mds = nil
		}
	}()
	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer nc.Close()

	for _, name := range knownNames() {
		v, err := nc.Var(name)
		if err != nil {
			continue
		}
		dims, err := v.Dims()
		if err != nil {
			return nil, fmt.Errorf("dimensions of %s: %w", name, err)
		}
		info := VariableInfo{Name: name}
		for _, d := range dims {
			dn, err := d.Name()
			if err != nil {
				return nil, err
			}
			dl, err := d.Len()
			if err != nil {
				return nil, err
			}
			info.Dims = append(info.Dims, dn)
			info.Lengths = append(info.Lengths, int(dl))
		}
		info.Units = readUnits(v)
		mds = append(mds, info)
	}
	return mds, nil
}

func readUnits(v netcdf.Var) string {
	a := v.Attr("units")
	n, err := a.Len()
	if err != nil || n == 0 {
		return ""
	}
	buf := make([]byte, n)
	if err := a.ReadBytes(buf); err != nil {
		return ""
	}
	return strings.TrimRight(string(buf), "\x00")
}

func readClassicMetadata(path string) ([]VariableInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	cf, err := cdf.Open(f)
	if err != nil {
		return nil, fmt.Errorf("read header %s: %w", path, err)
	}
	stored := make(map[string]bool)
	for _, name := range cf.Header.Variables() {
		stored[name] = true
	}

	var mds []VariableInfo
	for _, name := range knownNames() {
		if !stored[name] {
			continue
		}
		info := VariableInfo{
			Name:    name,
			Dims:    cf.Header.Dimensions(name),
			Lengths: cf.Header.Lengths(name),
		}
		if units, ok := cf.Header.GetAttribute(name, "units").(string); ok {
			info.Units = units
		}
		mds = append(mds, info)
	}
	return mds, nil
}

// ReadClassicVariable reads every value of a float64 variable from a
// classic file.
func ReadClassicVariable(path, name string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	cf, err := cdf.Open(f)
	if err != nil {
		return nil, fmt.Errorf("read header %s: %w", path, err)
	}
	end := cf.Header.Lengths(name)
	if len(end) == 0 {
		return nil, fmt.Errorf("variable %s not found in %s", name, path)
	}
	n := 1
	for _, l := range end {
		n *= l
	}
	data := make([]float64, n)
	r := cf.Reader(name, make([]int, len(end)), end)
	if _, err := r.Read(data); err != nil {
		return nil, fmt.Errorf("read variable %s: %w", name, err)
	}
	return data, nil
}
