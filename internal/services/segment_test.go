package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cablecalc/internal/engine"
	"cablecalc/internal/reference"

	"github.com/google/uuid"
)

func f(v float64) *float64 { return &v }

func serviceTables() *reference.Tables {
	return &reference.Tables{
		Insulations:         []reference.Insulation{{Label: "PVC", Key: "pvc", ThetaC: 70}},
		ConductorTypes:      []string{"Cu"},
		InstallationMethods: []string{"C"},
		StandardSections:    []float64{1.5, 2.5, 4},
		MethodPreference:    []string{"C"},
		BreakerRatings:      []float64{6, 10, 16},
		DropLimits:          map[string]float64{"power": 5.0},
		Resistivity20:       map[string]float64{"Cu": 0.0178},
		TempCoeff:           map[string]float64{"Cu": 0.00393},
		AmpacityBase:        map[string]map[float64]float64{"C": {1.5: 20, 2.5: 27, 4: 37}},
		InsulationFactors:   map[string]map[string]map[string]float64{"pvc": {"Cu": {"C": 1.0}}},
		LoadedFactors:       map[string]map[int]float64{"C": {2: 1.1, 3: 1.0}},
		GroupingFactors:     map[int]float64{1: 1.0, 2: 0.8},
		TempFactors: map[reference.Medium]map[string]map[float64]float64{
			reference.MediumAir: {"pvc": {10: 1.22, 30: 1.0, 50: 0.71}},
		},
		ReactanceData: reference.Reactance{Default: 0.08},
	}
}

func optimizeReq() *OptimizeRequest {
	return &OptimizeRequest{
		Insulation:   "PVC",
		Conductor:    "Cu",
		PowerW:       f(5000),
		Utilization:  f(1.0),
		Efficiency:   f(1.0),
		VoltageV:     f(400),
		CosPhi:       f(0.9),
		LengthM:      f(10),
		Method:       "C",
		LoadedCores:  3,
		Medium:       "air",
		TemperatureC: f(30),
		DropLimitKey: "power",
	}
}

func TestSegmentRequestValidation(t *testing.T) {
	svc := NewSegmentService(nil, engine.New(serviceTables()))

	t.Run("missing required fields reported by wire name", func(t *testing.T) {
		fields := svc.checkRequest(&SegmentRequest{})
		assert.Contains(t, fields, "power_w")
		assert.Contains(t, fields, "voltage_v")
		assert.Contains(t, fields, "area_mm2")
		assert.Contains(t, fields, "drop_limit_key")
	})

	t.Run("catalogue membership checked", func(t *testing.T) {
		fields := svc.checkRequest(&SegmentRequest{
			Insulation:   "rubber",
			Conductor:    "Ag",
			Method:       "Z9",
			DropLimitKey: "nope",
		})
		assert.Contains(t, fields, "insulation")
		assert.Contains(t, fields, "conductor")
		assert.Contains(t, fields, "method")
		assert.Contains(t, fields, "drop_limit_key")
	})

	t.Run("complete request passes", func(t *testing.T) {
		req := &SegmentRequest{
			From:         "MDB",
			To:           "DB1",
			Insulation:   "PVC",
			Conductor:    "Cu",
			PowerW:       f(1000),
			Utilization:  f(1.0),
			Efficiency:   f(1.0),
			VoltageV:     f(230),
			CosPhi:       f(1.0),
			LengthM:      f(10),
			AreaMM2:      f(2.5),
			Method:       "C",
			LoadedCores:  2,
			TemperatureC: f(30),
			BreakerA:     f(6),
			DropLimitKey: "power",
		}
		assert.Empty(t, svc.checkRequest(req))
	})
}

func TestOptimizeStrictness(t *testing.T) {
	svc := NewSegmentService(nil, engine.New(serviceTables()))
	ctx := context.Background()
	projectID := uuid.New()

	t.Run("missing inputs rejected", func(t *testing.T) {
		_, err := svc.Optimize(ctx, projectID, &OptimizeRequest{})
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, "power_w")
	})

	t.Run("unknown insulation rejected", func(t *testing.T) {
		req := optimizeReq()
		req.Insulation = "rubber"
		_, err := svc.Optimize(ctx, projectID, req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "insulation")
	})

	t.Run("out-of-range temperature rejected", func(t *testing.T) {
		req := optimizeReq()
		req.TemperatureC = f(80)
		_, err := svc.Optimize(ctx, projectID, req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "temperature")
	})

	t.Run("impossible load returns fallback candidates", func(t *testing.T) {
		req := optimizeReq()
		req.PowerW = f(500000)
		outcome, err := svc.Optimize(ctx, projectID, req)
		require.NoError(t, err)
		assert.Nil(t, outcome.Pick)
		assert.NotEmpty(t, outcome.Fallback)
		assert.LessOrEqual(t, len(outcome.Fallback), 3)
	})
}
