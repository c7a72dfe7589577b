package engine

import (
	"fmt"

	"cablecalc/internal/reference"
)

// Field error codes reported alongside a recomputation. The caller decides
// whether a flag is advisory (live edit) or blocking (record creation).
const (
	FieldMissing     = "missing"
	FieldOutOfDomain = "out_of_domain"
	FieldOutOfRange  = "out_of_range"
	FieldFailed      = "check_failed"
)

// singlePhaseVoltageV is the voltage level at which three loaded cores are
// flagged as a protection anomaly.
const singlePhaseVoltageV = 230

// Recompute derives every result field for one segment. It is total: any
// missing or out-of-domain input degrades only the values that depend on
// it, flags the field, and the rest of the result is still produced.
// Identical inputs against identical tables always produce identical
// results.
func (e *Engine) Recompute(in SegmentInput, prior []PriorSegment) *SegmentResult {
	res := &SegmentResult{
		FieldErrors:       map[string]string{},
		AmpacityVerdict:   VerdictUnknown,
		DropVerdict:       VerdictUnknown,
		ProtectionVerdict: VerdictUnknown,
		OverallVerdict:    VerdictUnknown,
	}

	loadedCores := in.LoadedCores
	if loadedCores != 2 && loadedCores != 3 {
		res.FieldErrors["loaded_cores"] = FieldOutOfDomain
		loadedCores = 3
	}
	circuits := in.CircuitsInGroup
	if circuits < 1 {
		res.FieldErrors["circuits_in_group"] = FieldOutOfDomain
		circuits = 1
	}
	parallel := in.ParallelCount
	if parallel < 1 {
		res.FieldErrors["parallel_count"] = FieldOutOfDomain
		parallel = 1
	}

	if in.DropLimitKey != "" {
		if limit, ok := e.tables.DropLimit(in.DropLimitKey); ok {
			res.DropLimitPct = fptr(limit)
		}
	}

	insulation, insulationOK := e.tables.InsulationByLabel(in.InsulationLabel)
	if !insulationOK && in.InsulationLabel != "" {
		res.FieldErrors["insulation"] = FieldOutOfDomain
	}

	s := e.GroupFactor(circuits, parallel)
	res.GroupFactor = fptr(s)

	var tCoeff *float64
	if insulationOK {
		if in.TemperatureC == nil {
			res.FieldErrors["temperature_c"] = FieldMissing
		} else if factor, ok := e.TemperatureFactor(insulation.Key, in.Medium, *in.TemperatureC); ok {
			tCoeff = fptr(factor)
		} else {
			res.FieldErrors["temperature_c"] = FieldOutOfRange
			res.Warnings = append(res.Warnings, Warning{
				Code: WarnTemperatureRange,
				Message: fmt.Sprintf("ambient temperature %.1f °C is outside the %s-medium table for %s insulation",
					*in.TemperatureC, in.Medium, insulation.Key),
			})
		}
	}
	res.TempFactor = tCoeff

	var eta *float64
	if in.Efficiency == nil {
		res.FieldErrors["efficiency"] = FieldMissing
	} else if *in.Efficiency <= 0 || *in.Efficiency > 1 {
		res.FieldErrors["efficiency"] = FieldOutOfDomain
	} else {
		eta = in.Efficiency
	}

	if in.VoltageV != nil && *in.VoltageV == singlePhaseVoltageV && loadedCores == 3 {
		res.FieldErrors["voltage_v"] = FieldOutOfDomain
		res.Warnings = append(res.Warnings, Warning{
			Code:    WarnSinglePhaseCores,
			Message: "three loaded cores at a single-phase voltage level; check the phase configuration",
		})
	}

	if in.PowerW != nil && in.Utilization != nil {
		res.PjW = fptr(*in.PowerW * *in.Utilization)
	}

	cosPhi := in.CosPhi
	if cosPhi != nil && (*cosPhi <= 0 || *cosPhi > 1) {
		res.FieldErrors["cos_phi"] = FieldOutOfDomain
		cosPhi = nil
	}

	area := in.AreaMM2
	if area != nil && *area <= 0 {
		res.FieldErrors["area_mm2"] = FieldOutOfDomain
		area = nil
	}

	length := in.LengthM
	if length != nil && *length < 0 {
		res.FieldErrors["length_m"] = FieldOutOfDomain
		length = nil
	}

	if res.PjW != nil && cosPhi != nil && eta != nil && in.VoltageV != nil {
		if icalc, ok := DesignCurrent(*in.PowerW, *in.Utilization, *eta, *in.VoltageV, *cosPhi, loadedCores); ok {
			res.IcalcA = fptr(icalc)
			res.IcalcPerCableA = fptr(icalc / float64(parallel))
		}
	}

	if area != nil && insulationOK {
		r, _ := e.LineImpedance(in.Conductor, insulation.ThetaC, *area, in.Method)
		res.RPerKm = fptr(r)
	}

	if rho, ok := e.tables.Resistivity20[in.Conductor]; ok && rho > 0 {
		res.SigmaConductivity = fptr(1.0 / rho)
	}

	baseAvailable := false
	if area != nil && insulationOK {
		if base, ok := e.Ampacity(insulation.Key, in.Conductor, in.Method, *area, loadedCores); ok {
			baseAvailable = true
			if tCoeff != nil {
				izOne := base * s * *tCoeff
				res.IzPerCableA = fptr(izOne)
				res.IzTotalA = fptr(izOne * float64(parallel))
			}
		}
	}

	breaker := in.BreakerA
	if breaker != nil && *breaker <= 0 {
		res.FieldErrors["breaker_a"] = FieldOutOfDomain
		breaker = nil
	}
	k := in.KFactor
	if k != nil && *k <= 0 {
		res.FieldErrors["k_factor"] = FieldOutOfDomain
		k = nil
	}
	if breaker != nil && k != nil {
		res.I2A = fptr(*breaker * *k)
	}

	if res.IcalcA != nil && length != nil && cosPhi != nil && area != nil && insulationOK && in.VoltageV != nil && *in.VoltageV != 0 {
		drop := e.VoltageDropPct(*in.VoltageV, *cosPhi, *length, in.Conductor,
			insulation.ThetaC, *area, in.Method, loadedCores, parallel, *res.IcalcA)
		res.DropPct = fptr(drop)
	}

	res.UpstreamDropPct = UpstreamDrop(in.Circuit, in.From, ChainKey{
		From:    in.From,
		To:      in.To,
		LengthM: in.LengthM,
		AreaMM2: in.AreaMM2,
	}, prior)
	if res.DropPct != nil {
		res.TotalDropPct = fptr(res.UpstreamDropPct + *res.DropPct)
	} else if res.UpstreamDropPct > 0 {
		res.TotalDropPct = fptr(res.UpstreamDropPct)
	}

	compliance := EvaluateCompliance(ComplianceInput{
		BaseAvailable:  baseAvailable,
		IzPerCableA:    res.IzPerCableA,
		IzTotalA:       res.IzTotalA,
		IcalcPerCableA: res.IcalcPerCableA,
		IcalcTotalA:    res.IcalcA,
		DropPct:        res.DropPct,
		DropLimitPct:   res.DropLimitPct,
		BreakerA:       breaker,
		I2A:            res.I2A,
	})
	res.AmpacityVerdict = compliance.Ampacity
	res.DropVerdict = compliance.Drop
	res.ProtectionVerdict = compliance.Protection
	res.OverallVerdict = compliance.Overall

	if compliance.Ampacity == VerdictFail {
		res.FieldErrors["area_mm2"] = FieldFailed
	}
	if compliance.Drop == VerdictFail {
		res.FieldErrors["length_m"] = FieldFailed
	}
	if compliance.Protection == VerdictFail {
		res.FieldErrors["breaker_a"] = FieldFailed
	}

	if compliance.Ampacity == VerdictFail || compliance.Drop == VerdictFail {
		res.Recommendations = e.Recommend(recommendInputFrom(in, insulation, s, tCoeff, loadedCores, parallel, res))
	}

	return res
}

func recommendInputFrom(in SegmentInput, insulation reference.Insulation, s float64, tCoeff *float64, loadedCores, parallel int, res *SegmentResult) RecommendInput {
	deref := func(p *float64) float64 {
		if p == nil {
			return 0
		}
		return *p
	}
	t := 1.0
	if tCoeff != nil {
		t = *tCoeff
	}
	return RecommendInput{
		VoltageV:         deref(in.VoltageV),
		CosPhi:           deref(in.CosPhi),
		LengthM:          deref(in.LengthM),
		Conductor:        in.Conductor,
		InsulationKey:    insulation.Key,
		InsulationThetaC: insulation.ThetaC,
		Method:           in.Method,
		LoadedCores:      loadedCores,
		GroupFactor:      s,
		TempFactor:       t,
		DropLimitPct:     res.DropLimitPct,
		CurrentAreaMM2:   deref(in.AreaMM2),
		ParallelCount:    parallel,
		IcalcTotalA:      deref(res.IcalcA),
	}
}
