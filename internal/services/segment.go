package services

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"cablecalc/internal/engine"
	model "cablecalc/internal/models"
	"cablecalc/internal/reference"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// defaultKFactor is applied when the breaker multiplier is absent or
// non-positive in an optimize request.
const defaultKFactor = 1.45

// SegmentRequest is the wire shape shared by preview and append. Preview
// accepts it as-is; append runs the validate tags plus the catalogue
// checks first.
type SegmentRequest struct {
	Circuit         string   `json:"circuit"`
	From            string   `json:"from" validate:"required"`
	To              string   `json:"to" validate:"required"`
	Insulation      string   `json:"insulation" validate:"required"`
	Conductor       string   `json:"conductor" validate:"required"`
	CableTag        *string  `json:"cable_tag"`
	PowerW          *float64 `json:"power_w" validate:"required,gt=0"`
	Utilization     *float64 `json:"utilization" validate:"required,gt=0"`
	Efficiency      *float64 `json:"efficiency" validate:"required,gt=0,lte=1"`
	VoltageV        *float64 `json:"voltage_v" validate:"required,gt=0"`
	CosPhi          *float64 `json:"cos_phi" validate:"required,gt=0,lte=1"`
	LengthM         *float64 `json:"length_m" validate:"required,gte=0"`
	AreaMM2         *float64 `json:"area_mm2" validate:"required,gt=0"`
	Method          string   `json:"method" validate:"required"`
	LoadedCores     int      `json:"loaded_cores" validate:"omitempty,oneof=2 3"`
	CircuitsInGroup int      `json:"circuits_in_group" validate:"omitempty,gte=1"`
	ParallelCount   int      `json:"parallel_count" validate:"omitempty,gte=1"`
	Medium          string   `json:"medium" validate:"omitempty,oneof=air soil"`
	TemperatureC    *float64 `json:"temperature_c" validate:"required"`
	BreakerA        *float64 `json:"breaker_a" validate:"required,gt=0"`
	KFactor         *float64 `json:"k_factor" validate:"omitempty,gt=0"`
	DropLimitKey    string   `json:"drop_limit_key" validate:"required"`
}

// Input converts the request into the engine's form.
func (r *SegmentRequest) Input() engine.SegmentInput {
	cableTag := ""
	if r.CableTag != nil {
		cableTag = *r.CableTag
	}
	return engine.SegmentInput{
		Circuit:         r.Circuit,
		From:            r.From,
		To:              r.To,
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
		Medium:          normMedium(r.Medium),
		TemperatureC:    r.TemperatureC,
		BreakerA:        r.BreakerA,
		KFactor:         r.KFactor,
		DropLimitKey:    r.DropLimitKey,
	}
}

// OptimizeRequest fixes everything except the cross-section and breaker.
type OptimizeRequest struct {
	Circuit         string   `json:"circuit"`
	From            string   `json:"from"`
	To              string   `json:"to"`
	Insulation      string   `json:"insulation" validate:"required"`
	Conductor       string   `json:"conductor" validate:"required"`
	PowerW          *float64 `json:"power_w" validate:"required,gt=0"`
	Utilization     *float64 `json:"utilization" validate:"required,gt=0"`
	Efficiency      *float64 `json:"efficiency" validate:"required,gt=0,lte=1"`
	VoltageV        *float64 `json:"voltage_v" validate:"required,gt=0"`
	CosPhi          *float64 `json:"cos_phi" validate:"required,gt=0,lte=1"`
	LengthM         *float64 `json:"length_m" validate:"required,gte=0"`
	Method          string   `json:"method" validate:"required"`
	LoadedCores     int      `json:"loaded_cores" validate:"omitempty,oneof=2 3"`
	CircuitsInGroup int      `json:"circuits_in_group" validate:"omitempty,gte=1"`
	ParallelCount   int      `json:"parallel_count" validate:"omitempty,gte=1"`
	Medium          string   `json:"medium" validate:"omitempty,oneof=air soil"`
	TemperatureC    *float64 `json:"temperature_c" validate:"required"`
	KFactor         *float64 `json:"k_factor"`
	DropLimitKey    string   `json:"drop_limit_key" validate:"required"`
}

// OptimizeOutcome is either a compliant pick with its full recomputed
// result, or a ranked fallback list when nothing in the catalogue passes.
type OptimizeOutcome struct {
	Pick     *engine.OptimalPick        `json:"pick,omitempty"`
	Result   *engine.SegmentResult      `json:"result,omitempty"`
	Fallback []engine.FallbackCandidate `json:"fallback,omitempty"`
}

// ValidationError carries per-field reasons for a rejected strict request.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

type SegmentService struct {
	db       *bun.DB
	eng      *engine.Engine
	validate *validator.Validate

	mu          sync.Mutex
	warnedTemp  map[string]struct{}
	warnedPhase map[uuid.UUID]struct{}
}

func NewSegmentService(db *bun.DB, eng *engine.Engine) *SegmentService {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields under their wire names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &SegmentService{
		db:          db,
		eng:         eng,
		validate:    v,
		warnedTemp:  map[string]struct{}{},
		warnedPhase: map[uuid.UUID]struct{}{},
	}
}

// Preview recomputes a live segment against the project's stored chain
// without persisting anything. Any input may be missing; the result
// degrades per field instead of failing.
func (s *SegmentService) Preview(ctx context.Context, projectID uuid.UUID, req *SegmentRequest) (*engine.SegmentResult, error) {
	prior, err := s.priorSegments(ctx, projectID)
	if err != nil {
		return nil, err
	}
	res := s.eng.Recompute(req.Input(), prior)
	res.Warnings = s.dedupeWarnings(projectID, req, res.Warnings)
	return res, nil
}

// dedupeWarnings drops warnings already raised for the same project and
// condition: temperature warnings repeat only when the insulation, medium
// or temperature (to 0.1 °C) changes, and the phase warning fires once per
// project.
func (s *SegmentService) dedupeWarnings(projectID uuid.UUID, req *SegmentRequest, warnings []engine.Warning) []engine.Warning {
	if len(warnings) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := warnings[:0]
	for _, w := range warnings {
		switch w.Code {
		case engine.WarnTemperatureRange:
			temp := 0.0
			if req.TemperatureC != nil {
				temp = *req.TemperatureC
			}
			key := fmt.Sprintf("%s|%s|%s|%.1f", projectID, req.Insulation, req.Medium, temp)
			if _, seen := s.warnedTemp[key]; seen {
				continue
			}
			s.warnedTemp[key] = struct{}{}
		case engine.WarnSinglePhaseCores:
			if _, seen := s.warnedPhase[projectID]; seen {
				continue
			}
			s.warnedPhase[projectID] = struct{}{}
		}
		kept = append(kept, w)
	}
	return kept
}

// Append validates the request strictly, recomputes it against the stored
// chain, and persists the record with its result frozen at append time.
func (s *SegmentService) Append(ctx context.Context, projectID uuid.UUID, req *SegmentRequest) (*model.SegmentRecord, error) {
	if fields := s.checkRequest(req); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	prior, err := s.priorSegments(ctx, projectID)
	if err != nil {
		return nil, err
	}
	res := s.eng.Recompute(req.Input(), prior)

	var position int
	err = s.db.NewSelect().
		ColumnExpr("COALESCE(MAX(position), 0) + 1").
		Table("segment_records").
		Where("project_id = ?", projectID).
		Scan(ctx, &position)
	if err != nil {
		return nil, fmt.Errorf("failed to assign position: %w", err)
	}

	rec := &model.SegmentRecord{
		ID:              uuid.New(),
		ProjectID:       projectID,
		Position:        position,
		Circuit:         req.Circuit,
		FromNode:        req.From,
		ToNode:          req.To,
		Insulation:      req.Insulation,
		Conductor:       req.Conductor,
		CableTag:        req.CableTag,
		PowerW:          req.PowerW,
		Utilization:     req.Utilization,
		Efficiency:      req.Efficiency,
		VoltageV:        req.VoltageV,
		CosPhi:          req.CosPhi,
		LengthM:         req.LengthM,
		AreaMM2:         req.AreaMM2,
		Method:          req.Method,
		LoadedCores:     normCount(req.LoadedCores, 3),
		CircuitsInGroup: normCount(req.CircuitsInGroup, 1),
		ParallelCount:   normCount(req.ParallelCount, 1),
		Medium:          normMedium(req.Medium),
		TemperatureC:    req.TemperatureC,
		BreakerA:        req.BreakerA,
		KFactor:         req.KFactor,
		DropLimitKey:    req.DropLimitKey,
		Result:          res,
	}
	if _, err := s.db.NewInsert().Model(rec).Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to store segment: %w", err)
	}
	return rec, nil
}

// List returns a project's records in append order, optionally filtered to
// a set of circuit identifiers.
func (s *SegmentService) List(ctx context.Context, projectID uuid.UUID, circuits []string) ([]model.SegmentRecord, error) {
	var records []model.SegmentRecord
	q := s.db.NewSelect().Model(&records).Where("project_id = ?", projectID)
	if len(circuits) > 0 {
		q = q.Where("circuit IN (?)", bun.In(circuits))
	}
	err := q.OrderExpr("position ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list segments: %w", err)
	}
	return records, nil
}

func (s *SegmentService) Delete(ctx context.Context, projectID, segmentID uuid.UUID) error {
	res, err := s.db.NewDelete().Model((*model.SegmentRecord)(nil)).
		Where("id = ? AND project_id = ?", segmentID, projectID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Optimize resolves the request strictly and runs the catalogue scan. On a
// compliant pick the full segment result for the chosen pair comes back
// alongside it; otherwise the three closest near-misses do.
func (s *SegmentService) Optimize(ctx context.Context, projectID uuid.UUID, req *OptimizeRequest) (*OptimizeOutcome, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, &ValidationError{Fields: validationFields(err)}
	}

	tables := s.eng.Tables()
	insulation, ok := tables.InsulationByLabel(req.Insulation)
	if !ok {
		return nil, fmt.Errorf("unknown insulation %q", req.Insulation)
	}
	if !contains(tables.InstallationMethods, req.Method) {
		return nil, fmt.Errorf("unknown installation method %q", req.Method)
	}
	if _, ok := tables.Resistivity20[req.Conductor]; !ok {
		return nil, fmt.Errorf("unknown conductor %q", req.Conductor)
	}
	dropLimit, ok := tables.DropLimit(req.DropLimitKey)
	if !ok {
		return nil, fmt.Errorf("unknown drop limit class %q", req.DropLimitKey)
	}

	loadedCores := normCount(req.LoadedCores, 3)
	circuits := normCount(req.CircuitsInGroup, 1)
	parallel := normCount(req.ParallelCount, 1)
	medium := normMedium(req.Medium)

	tempFactor, ok := s.eng.TemperatureFactor(insulation.Key, medium, *req.TemperatureC)
	if !ok {
		return nil, fmt.Errorf("ambient temperature %.1f °C is outside the %s-medium table for %s insulation",
			*req.TemperatureC, medium, insulation.Key)
	}

	icalc, ok := engine.DesignCurrent(*req.PowerW, *req.Utilization, *req.Efficiency,
		*req.VoltageV, *req.CosPhi, loadedCores)
	if !ok || icalc <= 0 {
		return nil, fmt.Errorf("design current is not positive for the given load")
	}

	k := defaultKFactor
	if req.KFactor != nil && *req.KFactor > 0 {
		k = *req.KFactor
	}

	pick, fallback := s.eng.SelectOptimal(engine.OptimizeInput{
		InsulationKey:    insulation.Key,
		InsulationThetaC: insulation.ThetaC,
		Conductor:        req.Conductor,
		Method:           req.Method,
		LoadedCores:      loadedCores,
		ParallelCount:    parallel,
		GroupFactor:      s.eng.GroupFactor(circuits, parallel),
		TempFactor:       tempFactor,
		VoltageV:         *req.VoltageV,
		CosPhi:           *req.CosPhi,
		LengthM:          *req.LengthM,
		IcalcTotalA:      icalc,
		DropLimitPct:     &dropLimit,
		KFactor:          k,
	})
	if pick == nil {
		return &OptimizeOutcome{Fallback: fallback}, nil
	}

	prior, err := s.priorSegments(ctx, projectID)
	if err != nil {
		return nil, err
	}
	chosen := &SegmentRequest{
		Circuit:         req.Circuit,
		From:            req.From,
		To:              req.To,
		Insulation:      req.Insulation,
		Conductor:       req.Conductor,
		PowerW:          req.PowerW,
		Utilization:     req.Utilization,
		Efficiency:      req.Efficiency,
		VoltageV:        req.VoltageV,
		CosPhi:          req.CosPhi,
		LengthM:         req.LengthM,
		AreaMM2:         &pick.AreaMM2,
		Method:          req.Method,
		LoadedCores:     loadedCores,
		CircuitsInGroup: circuits,
		ParallelCount:   parallel,
		Medium:          string(medium),
		TemperatureC:    req.TemperatureC,
		BreakerA:        &pick.BreakerA,
		KFactor:         &k,
		DropLimitKey:    req.DropLimitKey,
	}
	return &OptimizeOutcome{
		Pick:   pick,
		Result: s.eng.Recompute(chosen.Input(), prior),
	}, nil
}

// checkRequest runs the tag validation plus the catalogue membership
// checks the tags cannot express.
func (s *SegmentService) checkRequest(req *SegmentRequest) map[string]string {
	fields := map[string]string{}
	if err := s.validate.Struct(req); err != nil {
		fields = validationFields(err)
	}

	tables := s.eng.Tables()
	if req.Insulation != "" {
		if _, ok := tables.InsulationByLabel(req.Insulation); !ok {
			fields["insulation"] = "unknown insulation class"
		}
	}
	if req.Conductor != "" {
		if _, ok := tables.Resistivity20[req.Conductor]; !ok {
			fields["conductor"] = "unknown conductor material"
		}
	}
	if req.Method != "" && !contains(tables.InstallationMethods, req.Method) {
		fields["method"] = "unknown installation method"
	}
	if req.DropLimitKey != "" {
		if _, ok := tables.DropLimit(req.DropLimitKey); !ok {
			fields["drop_limit_key"] = "unknown drop limit class"
		}
	}
	return fields
}

func (s *SegmentService) priorSegments(ctx context.Context, projectID uuid.UUID) ([]engine.PriorSegment, error) {
	var records []model.SegmentRecord
	err := s.db.NewSelect().Model(&records).
		Where("project_id = ?", projectID).
		OrderExpr("position ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stored segments: %w", err)
	}
	prior := make([]engine.PriorSegment, 0, len(records))
	for i := range records {
		prior = append(prior, records[i].Prior())
	}
	return prior, nil
}

func validationFields(err error) map[string]string {
	fields := map[string]string{}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			fields[fe.Field()] = fmt.Sprintf("failed %s check", fe.Tag())
		}
		return fields
	}
	fields["_"] = err.Error()
	return fields
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func normCount(v, def int) int {
	if v < 1 {
		return def
	}
	return v
}

func normMedium(m string) reference.Medium {
	if reference.Medium(m) == reference.MediumSoil {
		return reference.MediumSoil
	}
	return reference.MediumAir
}
