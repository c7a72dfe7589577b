package engine

import "math"

// Tolerances for treating a requested area as an exact standard section.
const (
	areaRelTol = 1e-6
	areaAbsTol = 1e-3
)

func areaClose(a, b float64) bool {
	return math.Abs(a-b) <= math.Max(areaRelTol*math.Max(math.Abs(a), math.Abs(b)), areaAbsTol)
}

// PhaseFactor is 2 for a single-phase (two loaded cores) circuit and √3
// for a three-phase one.
func PhaseFactor(loadedCores int) float64 {
	if loadedCores == 2 {
		return 2.0
	}
	return math.Sqrt(3)
}

// Ampacity looks up the base current-carrying capacity for a method/area
// pair and applies the insulation/conductor and loaded-core multipliers.
// The base table is interpolated linearly between bracketing standard
// areas; areas outside the table clamp to the boundary value. The second
// return is false when any table or factor is missing.
func (e *Engine) Ampacity(insulationKey, conductor, method string, areaMM2 float64, loadedCores int) (float64, bool) {
	baseTable, ok := e.tables.AmpacityBase[method]
	if !ok || len(baseTable) == 0 {
		return 0, false
	}

	byConductor, ok := e.tables.InsulationFactors[insulationKey]
	if !ok {
		return 0, false
	}
	byMethod, ok := byConductor[conductor]
	if !ok {
		return 0, false
	}
	multiplier, ok := byMethod[method]
	if !ok {
		return 0, false
	}
	loadTable, ok := e.tables.LoadedFactors[method]
	if !ok {
		return 0, false
	}
	loadMultiplier, ok := loadTable[loadedCores]
	if !ok {
		return 0, false
	}

	areas := e.tables.AmpacityAreas(method)
	var base float64
	switch {
	case areaMM2 <= areas[0]:
		base = baseTable[areas[0]]
	case areaMM2 >= areas[len(areas)-1]:
		base = baseTable[areas[len(areas)-1]]
	default:
		found := false
		for i := 0; i < len(areas)-1; i++ {
			lower, upper := areas[i], areas[i+1]
			if areaClose(areaMM2, lower) {
				base = baseTable[lower]
				found = true
				break
			}
			if areaMM2 >= lower && areaMM2 <= upper {
				lowerVal, upperVal := baseTable[lower], baseTable[upper]
				if upper == lower {
					base = lowerVal
				} else {
					ratio := (areaMM2 - lower) / (upper - lower)
					base = lowerVal + ratio*(upperVal-lowerVal)
				}
				found = true
				break
			}
		}
		if !found {
			return 0, false
		}
	}

	return base * multiplier * loadMultiplier, true
}

// DesignCurrent computes the load current the segment must carry:
//
//	Pj = Pi·Kj,  Icalc = (Pj/η) / (phase·U·cosφ)
//
// A zero denominator (voltage, power factor or efficiency) makes the result
// unavailable rather than infinite.
func DesignCurrent(powerW, utilization, efficiency, voltageV, cosPhi float64, loadedCores int) (float64, bool) {
	if efficiency == 0 {
		return 0, false
	}
	denominator := PhaseFactor(loadedCores) * voltageV * cosPhi
	if denominator == 0 {
		return 0, false
	}
	pj := powerW * utilization
	return (pj / efficiency) / denominator, true
}

// VoltageDropPct computes the percentage voltage drop over the segment at
// the given total current. Impedance is taken per metre and per parallel
// cable; sinφ is clamped to its valid domain. A zero voltage yields 0.
func (e *Engine) VoltageDropPct(voltageV, cosPhi, lengthM float64, conductor string, insulationThetaC, areaMM2 float64, method string, loadedCores, parallelCount int, totalCurrentA float64) float64 {
	if voltageV == 0 {
		return 0
	}
	rPerKm, xPerKm := e.LineImpedance(conductor, insulationThetaC, areaMM2, method)
	divider := float64(parallelCount)
	if divider < 1 {
		divider = 1
	}
	rPerM := (rPerKm / 1000.0) / divider
	xPerM := (xPerKm / 1000.0) / divider
	sinPhi := math.Sqrt(math.Max(0, 1.0-math.Min(1.0, cosPhi)*math.Min(1.0, cosPhi)))
	return PhaseFactor(loadedCores) * totalCurrentA * (rPerM*cosPhi + xPerM*sinPhi) * lengthM * 100.0 / voltageV
}
