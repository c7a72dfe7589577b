package engine

import "cablecalc/internal/reference"

// EffectiveCircuits folds parallel cables into the grouped-circuit count.
// Parallel runs only inflate the count when there is more than one of them.
func EffectiveCircuits(circuitsInGroup, parallelCount int) int {
	if parallelCount > 1 {
		n := circuitsInGroup + parallelCount - 1
		if n < 1 {
			n = 1
		}
		return n
	}
	return circuitsInGroup
}

// GroupFactor resolves the grouping derating factor S for the effective
// circuit count. Counts at or above the largest tabulated key take that
// key's value (flat extrapolation); counts below one circuit take 1.0.
func (e *Engine) GroupFactor(circuitsInGroup, parallelCount int) float64 {
	circuits := EffectiveCircuits(circuitsInGroup, parallelCount)
	if circuits <= 1 {
		return 1.0
	}
	table := e.tables.GroupingFactors
	if len(table) == 0 {
		return 1.0
	}
	maxKey := 0
	for k := range table {
		if k > maxKey {
			maxKey = k
		}
	}
	if circuits >= maxKey {
		return table[maxKey]
	}
	if v, ok := table[circuits]; ok {
		return v
	}
	return table[maxKey]
}

// TemperatureFactor resolves the ambient-temperature derating factor T.
// Outside the table's breakpoint range the factor is unavailable, never
// extrapolated. An exact breakpoint hit returns the tabulated value; in
// between, the two bracketing breakpoints are interpolated linearly.
func (e *Engine) TemperatureFactor(insulationKey string, medium reference.Medium, temperatureC float64) (float64, bool) {
	table, ok := e.tables.TemperatureTable(insulationKey, medium)
	if !ok {
		return 0, false
	}

	points := reference.TemperatureBreakpoints(table)
	if temperatureC < points[0] || temperatureC > points[len(points)-1] {
		return 0, false
	}

	if v, ok := table[temperatureC]; ok {
		if v <= 0 {
			return 0, false
		}
		return v, true
	}

	for i := 0; i < len(points)-1; i++ {
		lower, upper := points[i], points[i+1]
		if temperatureC < lower || temperatureC > upper {
			continue
		}
		lowerVal, upperVal := table[lower], table[upper]
		if upper == lower {
			return lowerVal, lowerVal > 0
		}
		ratio := (temperatureC - lower) / (upper - lower)
		v := lowerVal + ratio*(upperVal-lowerVal)
		if v <= 0 {
			return 0, false
		}
		return v, true
	}
	return 0, false
}
