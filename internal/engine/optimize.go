package engine

import (
	"fmt"
	"sort"
)

// OptimizeInput fixes everything but the cross-section and breaker rating.
type OptimizeInput struct {
	InsulationKey    string
	InsulationThetaC float64
	Conductor        string
	Method           string
	LoadedCores      int
	ParallelCount    int
	GroupFactor      float64 // S
	TempFactor       float64 // T
	VoltageV         float64
	CosPhi           float64
	LengthM          float64
	IcalcTotalA      float64
	DropLimitPct     *float64
	KFactor          float64
}

// OptimalPick is the first fully compliant (area, breaker) pair found.
type OptimalPick struct {
	AreaMM2  float64 `json:"area_mm2"`
	BreakerA float64 `json:"breaker_a"`
	IzTotalA float64 `json:"iz_total_a"`
	DropPct  float64 `json:"drop_pct"`
}

// FallbackCandidate is a near-miss pair together with its total violation
// magnitude and human-readable annotations of what it violates.
type FallbackCandidate struct {
	AreaMM2    float64  `json:"area_mm2"`
	BreakerA   float64  `json:"breaker_a"`
	IzTotalA   float64  `json:"iz_total_a"`
	DropPct    float64  `json:"drop_pct"`
	Magnitude  float64  `json:"magnitude"`
	Violations []string `json:"violations"`
}

// SelectOptimal scans standard cross-sections in ascending catalogue order
// and, per section, breaker ratings in catalogue order, returning the first
// pair that passes the full compliance triple. The scan order is the
// deterministic tie-break: smallest area first, then earliest breaker.
// When no pair is compliant the three lowest-magnitude candidates come back
// as a ranked fallback instead.
func (e *Engine) SelectOptimal(in OptimizeInput) (*OptimalPick, []FallbackCandidate) {
	parallel := in.ParallelCount
	if parallel < 1 {
		parallel = 1
	}

	var fallback []FallbackCandidate

	for _, area := range e.tables.StandardSections {
		if area <= 0 {
			continue
		}
		izBase, ok := e.Ampacity(in.InsulationKey, in.Conductor, in.Method, area, in.LoadedCores)
		if !ok || izBase == 0 {
			continue
		}
		izOne := izBase * in.GroupFactor * in.TempFactor
		izTotal := izOne * float64(parallel)
		if izTotal <= 0 {
			continue
		}
		drop := e.VoltageDropPct(in.VoltageV, in.CosPhi, in.LengthM, in.Conductor,
			in.InsulationThetaC, area, in.Method, in.LoadedCores, parallel, in.IcalcTotalA)

		for _, breaker := range e.tables.BreakerRatings {
			if breaker <= 0 {
				continue
			}
			i2 := breaker * in.KFactor
			withinCurrent := in.IcalcTotalA <= breaker && breaker <= izTotal
			dropOK := in.DropLimitPct == nil || drop <= *in.DropLimitPct
			protectionOK := i2 <= overloadHeadroom*izTotal
			if withinCurrent && dropOK && protectionOK {
				return &OptimalPick{AreaMM2: area, BreakerA: breaker, IzTotalA: izTotal, DropPct: drop}, nil
			}

			magnitude := max0(in.IcalcTotalA-breaker) +
				max0(breaker-izTotal) +
				max0(in.IcalcTotalA-izTotal) +
				max0(i2-overloadHeadroom*izTotal)
			if in.DropLimitPct != nil {
				magnitude += max0(drop - *in.DropLimitPct)
			}
			fallback = append(fallback, FallbackCandidate{
				AreaMM2:    area,
				BreakerA:   breaker,
				IzTotalA:   izTotal,
				DropPct:    drop,
				Magnitude:  magnitude,
				Violations: e.annotate(in, breaker, izTotal, drop),
			})
		}
	}

	if len(fallback) == 0 {
		return nil, nil
	}
	sort.SliceStable(fallback, func(i, j int) bool {
		a, b := fallback[i], fallback[j]
		if a.Magnitude != b.Magnitude {
			return a.Magnitude < b.Magnitude
		}
		if a.AreaMM2 != b.AreaMM2 {
			return a.AreaMM2 < b.AreaMM2
		}
		return a.BreakerA < b.BreakerA
	})
	if len(fallback) > 3 {
		fallback = fallback[:3]
	}
	return nil, fallback
}

func (e *Engine) annotate(in OptimizeInput, breaker, izTotal, drop float64) []string {
	var issues []string
	if in.DropLimitPct != nil && drop > *in.DropLimitPct {
		issues = append(issues, fmt.Sprintf("voltage drop exceeds limit by %.2f%%", drop-*in.DropLimitPct))
	}
	if breaker < in.IcalcTotalA {
		issues = append(issues, fmt.Sprintf("breaker rating below design current by %.2f A", in.IcalcTotalA-breaker))
	}
	if breaker > izTotal {
		issues = append(issues, fmt.Sprintf("breaker rating above total ampacity by %.2f A", breaker-izTotal))
	}
	if breaker*in.KFactor > overloadHeadroom*izTotal {
		issues = append(issues, fmt.Sprintf("let-through current above %.2f A", overloadHeadroom*izTotal))
	}
	if len(issues) == 0 {
		issues = append(issues, "marginal deviations only")
	}
	return issues
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
