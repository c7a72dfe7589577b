package engine

import (
	"fmt"

	"cablecalc/internal/reference"
)

// RecommendInput describes the failing, manually entered combination.
type RecommendInput struct {
	VoltageV         float64
	CosPhi           float64
	LengthM          float64
	Conductor        string
	InsulationKey    string
	InsulationThetaC float64
	Method           string
	LoadedCores      int
	GroupFactor      float64 // S
	TempFactor       float64 // T
	DropLimitPct     *float64
	CurrentAreaMM2   float64
	ParallelCount    int
	IcalcTotalA      float64
}

// Recommend proposes up to four remedies for a combination that failed the
// ampacity or drop check, in fixed order: a larger section, an installation
// method switch, a higher-temperature insulation class, and a parallel
// split sized to bring the drop under its limit. Each remedy is kept only
// if applying it restores full ampacity and drop compliance. When nothing
// applies a single generic remedy is returned.
func (e *Engine) Recommend(in RecommendInput) []string {
	if in.IcalcTotalA == 0 || in.GroupFactor <= 0 || in.TempFactor <= 0 {
		return nil
	}

	sections := e.tables.StandardSections
	if len(sections) == 0 {
		return nil
	}

	parallel := in.ParallelCount
	if parallel < 1 {
		parallel = 1
	}
	perCable := in.IcalcTotalA / float64(parallel)
	minSection := in.CurrentAreaMM2
	if minSection < sections[0] {
		minSection = sections[0]
	}

	var recs []string

	// 1) Larger section, same method and insulation.
	if area, izOne, drop, ok := e.firstViableSection(in, in.InsulationKey, in.InsulationThetaC, in.Method, minSection, perCable, parallel); ok {
		recs = append(recs, fmt.Sprintf("Increase cross-section to %s mm² (method %s) → Iz_total≈%.0f A, ΔU≈%.2f%%",
			fmtArea(area), in.Method, izOne*float64(parallel), drop))
	}

	// 2) Installation method switch per preference order.
	for _, m := range e.tables.MethodPreference {
		if m == in.Method {
			continue
		}
		if area, izOne, drop, ok := e.firstViableSection(in, in.InsulationKey, in.InsulationThetaC, m, minSection, perCable, parallel); ok {
			recs = append(recs, fmt.Sprintf("Switch installation method to %s with %s mm² → Iz_total≈%.0f A, ΔU≈%.2f%%",
				m, fmtArea(area), izOne*float64(parallel), drop))
			break
		}
	}

	// 3) Higher-temperature insulation class at the same or larger section.
	if alt, ok := e.hotterInsulation(in.InsulationKey, in.InsulationThetaC); ok {
		if area, izOne, drop, found := e.firstViableSection(in, alt.Key, alt.ThetaC, in.Method, minSection, perCable, parallel); found {
			recs = append(recs, fmt.Sprintf("Switch to %s insulation at %s mm² (method %s) → Iz_total≈%.0f A, ΔU≈%.2f%%",
				alt.Key, fmtArea(area), in.Method, izOne*float64(parallel), drop))
		}
	}

	// 4) Parallel split sized so the drop, scaled by the parallel-count
	// ratio, falls at or below the limit.
	if in.DropLimitPct != nil {
		baseArea := minSection
		if in.CurrentAreaMM2 > baseArea {
			baseArea = in.CurrentAreaMM2
		}
		drop := e.VoltageDropPct(in.VoltageV, in.CosPhi, in.LengthM, in.Conductor,
			in.InsulationThetaC, baseArea, in.Method, in.LoadedCores, parallel, in.IcalcTotalA)
		if drop > *in.DropLimitPct {
			if izBase, ok := e.Ampacity(in.InsulationKey, in.Conductor, in.Method, baseArea, in.LoadedCores); ok && izBase > 0 {
				izOne := izBase * in.GroupFactor * in.TempFactor
				limit := *in.DropLimitPct
				if limit < 1e-9 {
					limit = 1e-9
				}
				needed := parallel + 1
				if n := int(ceilDiv(drop*float64(parallel), limit)); n > needed {
					needed = n
				}
				if izOne > 0 {
					newDrop := e.VoltageDropPct(in.VoltageV, in.CosPhi, in.LengthM, in.Conductor,
						in.InsulationThetaC, baseArea, in.Method, in.LoadedCores, needed, in.IcalcTotalA)
					recs = append(recs, fmt.Sprintf("Split into %d parallel cables of %s mm² (method %s) → Iz_total≈%.0f A, ΔU≈%.2f%%",
						needed, fmtArea(baseArea), in.Method, izOne*float64(needed), newDrop))
				}
			}
		}
	}

	if len(recs) == 0 {
		recs = append(recs, "Reduce the number of grouped circuits or move to a higher voltage class.")
	}
	if len(recs) > 4 {
		recs = recs[:4]
	}
	return recs
}

// firstViableSection scans the catalogue upward from minSection for the
// first section whose derated ampacity covers the per-cable current and
// whose drop stays within the limit.
func (e *Engine) firstViableSection(in RecommendInput, insulationKey string, thetaC float64, method string, minSection, perCableA float64, parallel int) (area, izOne, drop float64, ok bool) {
	for _, candidate := range e.tables.StandardSections {
		if candidate < minSection {
			continue
		}
		izBase, found := e.Ampacity(insulationKey, in.Conductor, method, candidate, in.LoadedCores)
		if !found || izBase == 0 {
			continue
		}
		iz := izBase * in.GroupFactor * in.TempFactor
		if iz < perCableA {
			continue
		}
		d := e.VoltageDropPct(in.VoltageV, in.CosPhi, in.LengthM, in.Conductor,
			thetaC, candidate, method, in.LoadedCores, parallel, in.IcalcTotalA)
		if in.DropLimitPct != nil && d > *in.DropLimitPct {
			continue
		}
		return candidate, iz, d, true
	}
	return 0, 0, 0, false
}

// hotterInsulation returns the hottest class strictly above the current one.
func (e *Engine) hotterInsulation(currentKey string, currentThetaC float64) (reference.Insulation, bool) {
	var best reference.Insulation
	found := false
	for _, ins := range e.tables.Insulations {
		if ins.Key == currentKey || ins.ThetaC <= currentThetaC {
			continue
		}
		if !found || ins.ThetaC > best.ThetaC {
			best = ins
			found = true
		}
	}
	return best, found
}

func fmtArea(area float64) string {
	if area == float64(int64(area)) {
		return fmt.Sprintf("%d", int64(area))
	}
	return fmt.Sprintf("%.1f", area)
}

func ceilDiv(numerator, denominator float64) float64 {
	v := numerator / denominator
	if v == float64(int64(v)) {
		return v
	}
	return float64(int64(v) + 1)
}
