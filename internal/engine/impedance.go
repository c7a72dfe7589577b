package engine

import "cablecalc/internal/reference"

// LineImpedance computes per-kilometre resistance and reactance for a
// conductor at its insulation's rated temperature. Resistance corrects the
// 20 °C resistivity with the conductor's temperature coefficient:
//
//	ρθ = ρ20 · (1 + α·(θ − 20)),  R/km = ρθ/area · 1000
//
// An unknown conductor yields R = 0 with the table's default reactance.
// Reactance resolves through the bucket table for the installation method,
// then the method default, then the global default.
func (e *Engine) LineImpedance(conductor string, insulationThetaC, areaMM2 float64, method string) (rPerKm, xPerKm float64) {
	react := e.tables.ReactanceData

	rho20, okRho := e.tables.Resistivity20[conductor]
	alpha, okAlpha := e.tables.TempCoeff[conductor]
	if !okRho || !okAlpha {
		return 0, react.Default
	}

	rhoTheta := rho20 * (1.0 + alpha*(insulationThetaC-20.0))
	if areaMM2 > 0 {
		rPerKm = (rhoTheta / areaMM2) * 1000.0
	}

	bucket := reference.ReactanceBucket(areaMM2)
	if byBucket, ok := react.Buckets[method]; ok {
		if x, ok := byBucket[bucket]; ok {
			return rPerKm, x
		}
	}
	if x, ok := react.MethodDefaults[method]; ok {
		return rPerKm, x
	}
	return rPerKm, react.Default
}
