package ncio

import (
	"fmt"
	"sort"

	"github.com/fhs/go-netcdf/netcdf"
	"github.com/minhyannv/msise00-go/pkg/atmos"
)

// writeNetCDF4 writes ds as an HDF5-backed NetCDF4 file.
func writeNetCDF4(path string, ds *atmos.Dataset) (err error) {
	nc, err := netcdf.CreateFile(path, netcdf.CLOBBER|netcdf.NETCDF4)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := nc.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	shape := ds.Shape()
	dims := make([]netcdf.Dim, len(atmos.DimNames))
	coordVars := make([]netcdf.Var, len(atmos.DimNames))
	for i, name := range atmos.DimNames {
		dims[i], err = nc.AddDim(name, uint64(shape[i]))
		if err != nil {
			return fmt.Errorf("add dimension %s: %w", name, err)
		}
		coordVars[i], err = nc.AddVar(name, netcdf.DOUBLE, []netcdf.Dim{dims[i]})
		if err != nil {
			return fmt.Errorf("add coordinate %s: %w", name, err)
		}
		if err := coordVars[i].Attr("units").WriteBytes([]byte(coordUnits[name])); err != nil {
			return fmt.Errorf("units of %s: %w", name, err)
		}
	}

	names := ds.VariableNames()
	vars := make([]netcdf.Var, len(names))
	for i, name := range names {
		vars[i], err = nc.AddVar(name, netcdf.DOUBLE, dims)
		if err != nil {
			return fmt.Errorf("add variable %s: %w", name, err)
		}
		if units := ds.Variables[name].Units; units != "" {
			if err := vars[i].Attr("units").WriteBytes([]byte(units)); err != nil {
				return fmt.Errorf("units of %s: %w", name, err)
			}
		}
	}

	attrNames := make([]string, 0, len(ds.Attrs))
	for k := range ds.Attrs {
		attrNames = append(attrNames, k)
	}
	sort.Strings(attrNames)
	for _, k := range attrNames {
		if err := nc.Attr(k).WriteFloat64s([]float64{ds.Attrs[k]}); err != nil {
			return fmt.Errorf("attribute %s: %w", k, err)
		}
	}
	if err := nc.Attr("source").WriteBytes([]byte("MSISE-00")); err != nil {
		return fmt.Errorf("attribute source: %w", err)
	}

	if err := nc.EndDef(); err != nil {
		return fmt.Errorf("end define mode: %w", err)
	}

	for i, values := range coordinates(ds) {
		if err := coordVars[i].WriteFloat64s(values); err != nil {
			return fmt.Errorf("write coordinate %s: %w", atmos.DimNames[i], err)
		}
	}
	for i, name := range names {
		if err := vars[i].WriteFloat64s(ds.Variables[name].Data); err != nil {
			return fmt.Errorf("write variable %s: %w", name, err)
		}
	}
	return nil
}
