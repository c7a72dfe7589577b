package engine_test

import (
	"cablecalc/internal/engine"
	"cablecalc/internal/reference"
)

func f(v float64) *float64 { return &v }

// testTables is a small but complete table set with round numbers so the
// expected values in the assertions stay readable.
func testTables() *reference.Tables {
	return &reference.Tables{
		Insulations: []reference.Insulation{
			{Label: "PVC", Key: "pvc", ThetaC: 70},
			{Label: "XLPE", Key: "xlpe", ThetaC: 90},
		},
		ConductorTypes:      []string{"Cu", "Al"},
		VoltageLevels:       []float64{230, 400},
		Media:               []reference.Medium{reference.MediumAir, reference.MediumSoil},
		InstallationMethods: []string{"C", "B1"},
		StandardSections:    []float64{1.5, 2.5, 4, 6, 10, 16, 25},
		MethodPreference:    []string{"C", "B1"},
		BreakerRatings:      []float64{6, 10, 16, 20, 25, 32, 40, 50, 63},
		DropLimits:          map[string]float64{"lighting": 3.0, "power": 5.0},

		Resistivity20: map[string]float64{"Cu": 0.0178, "Al": 0.0286},
		TempCoeff:     map[string]float64{"Cu": 0.00393, "Al": 0.00403},

		AmpacityBase: map[string]map[float64]float64{
			"C":  {1.5: 20, 2.5: 27, 4: 37, 6: 47, 10: 65, 16: 87, 25: 114},
			"B1": {1.5: 17.5, 2.5: 24, 4: 32, 6: 41, 10: 57, 16: 76, 25: 101},
		},
		InsulationFactors: map[string]map[string]map[string]float64{
			"pvc":  {"Cu": {"C": 1.0, "B1": 1.0}, "Al": {"C": 0.78, "B1": 0.78}},
			"xlpe": {"Cu": {"C": 1.15, "B1": 1.15}, "Al": {"C": 0.9, "B1": 0.9}},
		},
		LoadedFactors: map[string]map[int]float64{
			"C":  {2: 1.1, 3: 1.0},
			"B1": {2: 1.1, 3: 1.0},
		},
		GroupingFactors: map[int]float64{1: 1.0, 2: 0.8, 3: 0.7, 4: 0.65},
		TempFactors: map[reference.Medium]map[string]map[float64]float64{
			reference.MediumAir: {
				"pvc":  {10: 1.22, 20: 1.12, 30: 1.0, 40: 0.87, 50: 0.71},
				"xlpe": {10: 1.15, 20: 1.08, 30: 1.0, 40: 0.91, 50: 0.82},
			},
			reference.MediumSoil: {
				"pvc":  {10: 1.1, 20: 1.0, 30: 0.89},
				"xlpe": {10: 1.07, 20: 1.0, 30: 0.93},
			},
		},
		ReactanceData: reference.Reactance{
			Default:        0.08,
			MethodDefaults: map[string]float64{"B1": 0.085},
			Buckets: map[string]map[string]float64{
				"C": {reference.BucketLE95: 0.09, reference.BucketLE240: 0.085, reference.BucketGT240: 0.08},
			},
		},
	}
}

func newTestEngine() *engine.Engine {
	return engine.New(testTables())
}
