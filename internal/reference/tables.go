package reference

import "sort"

// Medium selects which temperature-factor table applies.
type Medium string

const (
	MediumAir  Medium = "air"
	MediumSoil Medium = "soil"
)

// Insulation is one selectable insulation class. Key addresses the factor
// tables, ThetaC is the rated conductor temperature used for resistance
// correction.
type Insulation struct {
	Label  string  `json:"label"`
	Key    string  `json:"key"`
	ThetaC float64 `json:"theta_c"`
}

// Reactance carries per-method, per-area-bucket reactance values in Ω/km
// together with the fallback chain: bucket → method default → global default.
type Reactance struct {
	Default        float64
	MethodDefaults map[string]float64
	Buckets        map[string]map[string]float64 // method → bucket → Ω/km
}

// Area buckets used by the reactance table.
const (
	BucketLE95  = "le95"  // area ≤ 95 mm²
	BucketLE240 = "le240" // 95 < area ≤ 240 mm²
	BucketGT240 = "gt240" // area > 240 mm²
)

// ReactanceBucket maps a cross-section to its table bucket.
func ReactanceBucket(areaMM2 float64) string {
	switch {
	case areaMM2 > 240:
		return BucketGT240
	case areaMM2 > 95:
		return BucketLE240
	default:
		return BucketLE95
	}
}

// Tables is the full read-only reference set loaded once at startup and
// shared by every calculation. Nothing here is mutated after Load.
type Tables struct {
	Insulations         []Insulation
	ConductorTypes      []string
	VoltageLevels       []float64
	Media               []Medium
	InstallationMethods []string
	StandardSections    []float64 // ascending catalogue order
	MethodPreference    []string
	BreakerRatings      []float64 // catalogue order
	DropLimits          map[string]float64

	Resistivity20 map[string]float64 // Ω·mm²/m at 20 °C, per conductor
	TempCoeff     map[string]float64 // 1/°C, per conductor

	AmpacityBase      map[string]map[float64]float64            // method → area → A
	InsulationFactors map[string]map[string]map[string]float64  // insulation → conductor → method
	LoadedFactors     map[string]map[int]float64                // method → loaded cores
	GroupingFactors   map[int]float64                           // circuit count → factor
	TempFactors       map[Medium]map[string]map[float64]float64 // medium → insulation → °C → factor
	ReactanceData     Reactance
}

// InsulationByLabel resolves a display label to its class definition.
func (t *Tables) InsulationByLabel(label string) (Insulation, bool) {
	for _, ins := range t.Insulations {
		if ins.Label == label || ins.Key == label {
			return ins, true
		}
	}
	return Insulation{}, false
}

// DropLimit returns the percentage limit for a named limit class.
func (t *Tables) DropLimit(key string) (float64, bool) {
	v, ok := t.DropLimits[key]
	return v, ok
}

// AmpacityAreas returns the sorted standard areas of a method's base table.
func (t *Tables) AmpacityAreas(method string) []float64 {
	table, ok := t.AmpacityBase[method]
	if !ok || len(table) == 0 {
		return nil
	}
	areas := make([]float64, 0, len(table))
	for a := range table {
		areas = append(areas, a)
	}
	sort.Float64s(areas)
	return areas
}

// TemperatureTable selects the soil or air factor table for an insulation
// class. The second return is false when no data exists for that pair.
func (t *Tables) TemperatureTable(insulationKey string, medium Medium) (map[float64]float64, bool) {
	byIns, ok := t.TempFactors[medium]
	if !ok {
		return nil, false
	}
	table, ok := byIns[insulationKey]
	if !ok || len(table) == 0 {
		return nil, false
	}
	return table, true
}

// TemperatureBreakpoints returns the sorted breakpoints of a factor table.
func TemperatureBreakpoints(table map[float64]float64) []float64 {
	points := make([]float64, 0, len(table))
	for p := range table {
		points = append(points, p)
	}
	sort.Float64s(points)
	return points
}
