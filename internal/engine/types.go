package engine

import (
	"cablecalc/internal/reference"
)

// Verdict is one pass/fail judgement on a computed segment. Unknown means
// the inputs needed for the check are not available yet; NotApplicable
// means the reference data offers no basis for the check at all.
type Verdict string

const (
	VerdictPass          Verdict = "pass"
	VerdictFail          Verdict = "fail"
	VerdictNotApplicable Verdict = "n/a"
	VerdictUnknown       Verdict = "unknown"
)

// Warning codes attached to a recomputation.
const (
	WarnTemperatureRange = "temperature_out_of_range"
	WarnSinglePhaseCores = "single_phase_three_cores"
)

// Warning is a non-fatal condition worth surfacing to the user once.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SegmentInput is one live segment as entered on the form. Numeric fields
// are pointers: nil means the field is empty, and every derived value that
// depends on it degrades to unavailable instead of aborting the
// recomputation.
type SegmentInput struct {
	Circuit         string           `json:"circuit"`
	From            string           `json:"from"`
	To              string           `json:"to"`
	InsulationLabel string           `json:"insulation"`
	Conductor       string           `json:"conductor"`
	CableTag        string           `json:"cable_tag"`
	PowerW          *float64         `json:"power_w"`      // Pi
	Utilization     *float64         `json:"utilization"`  // Kj
	Efficiency      *float64         `json:"efficiency"`   // η, (0,1]
	VoltageV        *float64         `json:"voltage_v"`    // U
	CosPhi          *float64         `json:"cos_phi"`      // (0,1]
	LengthM         *float64         `json:"length_m"`     // ≥ 0
	AreaMM2         *float64         `json:"area_mm2"`     // > 0
	Method          string           `json:"method"`       // installation method
	LoadedCores     int              `json:"loaded_cores"` // 2 or 3
	CircuitsInGroup int              `json:"circuits_in_group"`
	ParallelCount   int              `json:"parallel_count"`
	Medium          reference.Medium `json:"medium"`
	TemperatureC    *float64         `json:"temperature_c"`
	BreakerA        *float64         `json:"breaker_a"` // In
	KFactor         *float64         `json:"k_factor"`  // short-circuit multiplier k
	DropLimitKey    string           `json:"drop_limit_key"`
}

// PriorSegment is the slice of a stored record the chain accumulator needs.
type PriorSegment struct {
	Circuit string
	From    string
	To      string
	DropPct float64
	LengthM *float64
	AreaMM2 *float64
}

// SegmentResult carries every derived quantity for one segment. A nil
// pointer is the explicit "unavailable" marker; downstream consumers must
// treat it as non-numeric, never as zero.
type SegmentResult struct {
	PjW               *float64 `json:"pj_w"`
	IcalcA            *float64 `json:"icalc_a"`           // total design current
	IcalcPerCableA    *float64 `json:"icalc_per_cable_a"` // per parallel cable
	GroupFactor       *float64 `json:"group_factor"`      // S
	TempFactor        *float64 `json:"temp_factor"`       // T
	RPerKm            *float64 `json:"r_per_km"`
	SigmaConductivity *float64 `json:"sigma"` // 1/ρ20
	IzPerCableA       *float64 `json:"iz_per_cable_a"`
	IzTotalA          *float64 `json:"iz_total_a"`
	I2A               *float64 `json:"i2_a"` // In·k
	DropPct           *float64 `json:"drop_pct"`
	UpstreamDropPct   float64  `json:"upstream_drop_pct"`
	TotalDropPct      *float64 `json:"total_drop_pct"`
	DropLimitPct      *float64 `json:"drop_limit_pct"`

	AmpacityVerdict   Verdict `json:"ampacity_verdict"`
	DropVerdict       Verdict `json:"drop_verdict"`
	ProtectionVerdict Verdict `json:"protection_verdict"`
	OverallVerdict    Verdict `json:"overall_verdict"`

	Recommendations []string          `json:"recommendations,omitempty"`
	Warnings        []Warning         `json:"warnings,omitempty"`
	FieldErrors     map[string]string `json:"field_errors,omitempty"`
}

// Engine runs every calculation against one injected, read-only table set.
// It holds no other state: Recompute is a pure function of its arguments,
// so a fixture table set substitutes cleanly in tests.
type Engine struct {
	tables *reference.Tables
}

func New(tables *reference.Tables) *Engine {
	return &Engine{tables: tables}
}

// Tables exposes the injected reference set for callers that need the
// catalogues themselves.
func (e *Engine) Tables() *reference.Tables {
	return e.tables
}

func fptr(v float64) *float64 { return &v }
