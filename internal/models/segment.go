package models

import (
	"time"

	"cablecalc/internal/engine"
	"cablecalc/internal/reference"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SegmentRecord is one appended row of the project's segment table: the
// input as entered plus the result frozen at append time. Records are
// immutable once stored; edits happen by deleting and re-appending.
type SegmentRecord struct {
	bun.BaseModel `bun:"table:segment_records,alias:seg"`

	ID        uuid.UUID `bun:",pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	ProjectID uuid.UUID `bun:"type:uuid" json:"project_id"`
	Position  int       `json:"position"`

	Circuit         string           `json:"circuit"`
	FromNode        string           `bun:"from_node" json:"from"`
	ToNode          string           `bun:"to_node" json:"to"`
	Insulation      string           `json:"insulation"`
	Conductor       string           `json:"conductor"`
	CableTag        *string          `json:"cable_tag"`
	PowerW          *float64         `json:"power_w"`
	Utilization     *float64         `json:"utilization"`
	Efficiency      *float64         `json:"efficiency"`
	VoltageV        *float64         `json:"voltage_v"`
	CosPhi          *float64         `json:"cos_phi"`
	LengthM         *float64         `json:"length_m"`
	AreaMM2         *float64         `bun:"area_mm2" json:"area_mm2"`
	Method          string           `json:"method"`
	LoadedCores     int              `json:"loaded_cores"`
	CircuitsInGroup int              `json:"circuits_in_group"`
	ParallelCount   int              `json:"parallel_count"`
	Medium          reference.Medium `json:"medium"`
	TemperatureC    *float64         `bun:"temperature_c" json:"temperature_c"`
	BreakerA        *float64         `bun:"breaker_a" json:"breaker_a"`
	KFactor         *float64         `json:"k_factor"`
	DropLimitKey    string           `json:"drop_limit_key"`

	Result *engine.SegmentResult `bun:"result,type:jsonb" json:"result"`

	CreatedAt time.Time `bun:",nullzero,default:now()" json:"created_at"`
}

// Input reconstructs the engine input the record was computed from.
func (r *SegmentRecord) Input() engine.SegmentInput {
	cableTag := ""
	if r.CableTag != nil {
		cableTag = *r.CableTag
	}
	return engine.SegmentInput{
		Circuit:         r.Circuit,
		From:            r.FromNode,
		To:              r.ToNode,
		InsulationLabel: r.Insulation,
		Conductor:       r.Conductor,
		CableTag:        cableTag,
		PowerW:          r.PowerW,
		Utilization:     r.Utilization,
		Efficiency:      r.Efficiency,
		VoltageV:        r.VoltageV,
		CosPhi:          r.CosPhi,
		LengthM:         r.LengthM,
		AreaMM2:         r.AreaMM2,
		Method:          r.Method,
		LoadedCores:     r.LoadedCores,
		CircuitsInGroup: r.CircuitsInGroup,
		ParallelCount:   r.ParallelCount,
		Medium:          r.Medium,
		TemperatureC:    r.TemperatureC,
		BreakerA:        r.BreakerA,
		KFactor:         r.KFactor,
		DropLimitKey:    r.DropLimitKey,
	}
}

// Prior reduces the record to what the chain accumulator reads.
func (r *SegmentRecord) Prior() engine.PriorSegment {
	drop := 0.0
	if r.Result != nil && r.Result.DropPct != nil {
		drop = *r.Result.DropPct
	}
	return engine.PriorSegment{
		Circuit: r.Circuit,
		From:    r.FromNode,
		To:      r.ToNode,
		DropPct: drop,
		LengthM: r.LengthM,
		AreaMM2: r.AreaMM2,
	}
}
