package atmos

// MSISE-00 output variable names.
const (
	He         = "He"
	O          = "O"
	N2         = "N2"
	O2         = "O2"
	Ar         = "Ar"
	Total      = "Total"
	H          = "H"
	N          = "N"
	AnomalousO = "AnomalousO"
	Tn         = "Tn"
	Texo       = "Texo"
)

// NumberDensities are the species reported in particles per cubic meter.
var NumberDensities = []string{He, O, N2, O2, Ar, H, N, AnomalousO}

// Temperatures are the neutral and exospheric temperatures.
var Temperatures = []string{Tn, Texo}

var order = []string{He, O, N2, O2, Ar, Total, H, N, AnomalousO, Tn, Texo}

var units = map[string]string{
	He:         "m^-3",
	O:          "m^-3",
	N2:         "m^-3",
	O2:         "m^-3",
	Ar:         "m^-3",
	Total:      "kg m^-3",
	H:          "m^-3",
	N:          "m^-3",
	AnomalousO: "m^-3",
	Tn:         "K",
	Texo:       "K",
}

// DefaultUnits returns the MSISE-00 unit of a variable, or "" if unknown.
func DefaultUnits(name string) string {
	return units[name]
}

func rank(name string) int {
	for i, n := range order {
		if n == name {
			return i
		}
	}
	return len(order)
}
