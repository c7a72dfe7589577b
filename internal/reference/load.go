package reference

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"go.uber.org/zap"
)

// rawTables mirrors the on-disk JSON document. Numeric map keys arrive as
// strings and are converted during Load.
type rawTables struct {
	Insulations         []Insulation                             `json:"insulations"`
	ConductorTypes      []string                                 `json:"conductor_types"`
	VoltageLevels       []float64                                `json:"voltage_levels"`
	Media               []string                                 `json:"media"`
	InstallationMethods []string                                 `json:"installation_methods"`
	StandardSections    []float64                                `json:"standard_sections"`
	MethodPreference    []string                                 `json:"method_preference"`
	BreakerRatings      []float64                                `json:"breaker_ratings"`
	DropLimits          map[string]float64                       `json:"drop_limits"`
	Resistivity20       map[string]float64                       `json:"resistivity_20"`
	TempCoeff           map[string]float64                       `json:"temp_coeff"`
	AmpacityBase        map[string]map[string]float64            `json:"ampacity_base"`
	InsulationFactors   map[string]map[string]map[string]float64 `json:"insulation_factors"`
	LoadedFactors       map[string]map[string]float64            `json:"loaded_factors"`
	GroupingFactors     map[string]float64                       `json:"grouping_factors"`
	TempFactors         map[string]map[string]map[string]float64 `json:"temperature_factors"`
	Reactance           struct {
		Default        float64                       `json:"default"`
		MethodDefaults map[string]float64            `json:"method_defaults"`
		Buckets        map[string]map[string]float64 `json:"buckets"`
	} `json:"reactance"`
}

// Load reads the reference document once at startup. A missing or
// unparseable file is an error; malformed entries inside individual
// sub-tables are skipped with a diagnostic so a single bad row never takes
// the whole table set down.
func Load(path string, logr *zap.Logger) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reference tables: %w", err)
	}

	var raw rawTables
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse reference tables: %w", err)
	}

	t := &Tables{
		Insulations:         raw.Insulations,
		ConductorTypes:      raw.ConductorTypes,
		VoltageLevels:       raw.VoltageLevels,
		InstallationMethods: raw.InstallationMethods,
		StandardSections:    append([]float64(nil), raw.StandardSections...),
		MethodPreference:    raw.MethodPreference,
		BreakerRatings:      raw.BreakerRatings,
		DropLimits:          raw.DropLimits,
		Resistivity20:       raw.Resistivity20,
		TempCoeff:           raw.TempCoeff,
		AmpacityBase:        map[string]map[float64]float64{},
		InsulationFactors:   raw.InsulationFactors,
		LoadedFactors:       map[string]map[int]float64{},
		GroupingFactors:     map[int]float64{},
		TempFactors:         map[Medium]map[string]map[float64]float64{},
		ReactanceData: Reactance{
			Default:        raw.Reactance.Default,
			MethodDefaults: raw.Reactance.MethodDefaults,
			Buckets:        raw.Reactance.Buckets,
		},
	}
	if t.ReactanceData.Default == 0 {
		t.ReactanceData.Default = 0.08
	}
	sort.Float64s(t.StandardSections)

	for _, m := range raw.Media {
		t.Media = append(t.Media, Medium(m))
	}
	if len(t.Media) == 0 {
		t.Media = []Medium{MediumAir, MediumSoil}
	}

	for method, inner := range raw.AmpacityBase {
		converted, err := floatKeys(inner)
		if err != nil {
			logr.Warn("ampacity_base: skipping method", zap.String("method", method), zap.Error(err))
			continue
		}
		t.AmpacityBase[method] = converted
	}

	for method, inner := range raw.LoadedFactors {
		converted := map[int]float64{}
		ok := true
		for k, v := range inner {
			n, err := strconv.Atoi(k)
			if err != nil {
				logr.Warn("loaded_factors: skipping method", zap.String("method", method), zap.String("key", k))
				ok = false
				break
			}
			converted[n] = v
		}
		if ok {
			t.LoadedFactors[method] = converted
		}
	}

	for k, v := range raw.GroupingFactors {
		n, err := strconv.Atoi(k)
		if err != nil {
			logr.Warn("grouping_factors: skipping entry", zap.String("key", k))
			continue
		}
		t.GroupingFactors[n] = v
	}

	for medium, byIns := range raw.TempFactors {
		dst := map[string]map[float64]float64{}
		for ins, inner := range byIns {
			converted, err := floatKeys(inner)
			if err != nil {
				logr.Warn("temperature_factors: skipping insulation",
					zap.String("medium", medium), zap.String("insulation", ins), zap.Error(err))
				continue
			}
			dst[ins] = converted
		}
		t.TempFactors[Medium(medium)] = dst
	}

	return t, nil
}

func floatKeys(in map[string]float64) (map[float64]float64, error) {
	out := make(map[float64]float64, len(in))
	for k, v := range in {
		f, err := strconv.ParseFloat(k, 64)
		if err != nil {
			return nil, fmt.Errorf("non-numeric key %q", k)
		}
		out[f] = v
	}
	return out, nil
}
