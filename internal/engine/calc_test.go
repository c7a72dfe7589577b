package engine_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cablecalc/internal/engine"
)

func TestAmpacity(t *testing.T) {
	e := newTestEngine()

	t.Run("exact standard section", func(t *testing.T) {
		iz, ok := e.Ampacity("pvc", "Cu", "C", 2.5, 3)
		require.True(t, ok)
		assert.InDelta(t, 27.0, iz, 1e-9)
	})

	t.Run("interpolates between sections", func(t *testing.T) {
		// midway between 2.5 (27 A) and 4 (37 A)
		iz, ok := e.Ampacity("pvc", "Cu", "C", 3.25, 3)
		require.True(t, ok)
		assert.InDelta(t, 32.0, iz, 1e-9)
	})

	t.Run("clamps below smallest section", func(t *testing.T) {
		iz, ok := e.Ampacity("pvc", "Cu", "C", 1.0, 3)
		require.True(t, ok)
		assert.InDelta(t, 20.0, iz, 1e-9)
	})

	t.Run("clamps above largest section", func(t *testing.T) {
		iz, ok := e.Ampacity("pvc", "Cu", "C", 500, 3)
		require.True(t, ok)
		assert.InDelta(t, 114.0, iz, 1e-9)
	})

	t.Run("applies insulation multiplier", func(t *testing.T) {
		iz, ok := e.Ampacity("xlpe", "Cu", "C", 2.5, 3)
		require.True(t, ok)
		assert.InDelta(t, 27.0*1.15, iz, 1e-9)
	})

	t.Run("applies loaded-core multiplier", func(t *testing.T) {
		iz, ok := e.Ampacity("pvc", "Cu", "C", 2.5, 2)
		require.True(t, ok)
		assert.InDelta(t, 27.0*1.1, iz, 1e-9)
	})

	t.Run("monotonic in area", func(t *testing.T) {
		prev := 0.0
		for area := 1.5; area <= 25.0; area += 0.5 {
			iz, ok := e.Ampacity("pvc", "Cu", "C", area, 3)
			require.True(t, ok, "area %.1f", area)
			assert.GreaterOrEqual(t, iz, prev, "area %.1f", area)
			prev = iz
		}
	})

	t.Run("unknown method unavailable", func(t *testing.T) {
		_, ok := e.Ampacity("pvc", "Cu", "Z9", 2.5, 3)
		assert.False(t, ok)
	})

	t.Run("unknown conductor unavailable", func(t *testing.T) {
		_, ok := e.Ampacity("pvc", "Ag", "C", 2.5, 3)
		assert.False(t, ok)
	})
}

func TestPhaseFactor(t *testing.T) {
	assert.InDelta(t, 2.0, engine.PhaseFactor(2), 1e-12)
	assert.InDelta(t, math.Sqrt(3), engine.PhaseFactor(3), 1e-12)
}

func TestDesignCurrent(t *testing.T) {
	t.Run("single phase kettle", func(t *testing.T) {
		// 1000 W, full utilization, unity everything, 230 V two-core
		icalc, ok := engine.DesignCurrent(1000, 1.0, 1.0, 230, 1.0, 2)
		require.True(t, ok)
		assert.InDelta(t, 2.1739, icalc, 1e-3)
	})

	t.Run("three phase divides by sqrt3", func(t *testing.T) {
		icalc, ok := engine.DesignCurrent(10000, 1.0, 1.0, 400, 0.9, 3)
		require.True(t, ok)
		assert.InDelta(t, 10000/(math.Sqrt(3)*400*0.9), icalc, 1e-9)
	})

	t.Run("efficiency scales the load", func(t *testing.T) {
		full, _ := engine.DesignCurrent(1000, 1.0, 1.0, 230, 1.0, 2)
		lossy, ok := engine.DesignCurrent(1000, 1.0, 0.8, 230, 1.0, 2)
		require.True(t, ok)
		assert.InDelta(t, full/0.8, lossy, 1e-9)
	})

	t.Run("zero voltage unavailable", func(t *testing.T) {
		_, ok := engine.DesignCurrent(1000, 1.0, 1.0, 0, 1.0, 2)
		assert.False(t, ok)
	})

	t.Run("zero efficiency unavailable", func(t *testing.T) {
		_, ok := engine.DesignCurrent(1000, 1.0, 0, 230, 1.0, 2)
		assert.False(t, ok)
	})
}

func TestVoltageDropPct(t *testing.T) {
	e := newTestEngine()

	t.Run("zero voltage yields zero", func(t *testing.T) {
		drop := e.VoltageDropPct(0, 0.9, 50, "Cu", 70, 2.5, "C", 3, 1, 10)
		assert.Zero(t, drop)
	})

	t.Run("non-negative for physical inputs", func(t *testing.T) {
		drop := e.VoltageDropPct(400, 0.9, 50, "Cu", 70, 2.5, "C", 3, 1, 10)
		assert.Greater(t, drop, 0.0)
	})

	t.Run("proportional to length", func(t *testing.T) {
		d1 := e.VoltageDropPct(400, 0.9, 25, "Cu", 70, 2.5, "C", 3, 1, 10)
		d2 := e.VoltageDropPct(400, 0.9, 50, "Cu", 70, 2.5, "C", 3, 1, 10)
		assert.InDelta(t, 2*d1, d2, 1e-9)
	})

	t.Run("parallel cables halve the drop", func(t *testing.T) {
		single := e.VoltageDropPct(400, 0.9, 50, "Cu", 70, 2.5, "C", 3, 1, 10)
		double := e.VoltageDropPct(400, 0.9, 50, "Cu", 70, 2.5, "C", 3, 2, 10)
		assert.InDelta(t, single/2, double, 1e-9)
	})

	t.Run("zero length yields zero", func(t *testing.T) {
		drop := e.VoltageDropPct(400, 0.9, 0, "Cu", 70, 2.5, "C", 3, 1, 10)
		assert.Zero(t, drop)
	})
}

func TestLineImpedance(t *testing.T) {
	e := newTestEngine()

	t.Run("resistance corrected to rated temperature", func(t *testing.T) {
		r, _ := e.LineImpedance("Cu", 70, 2.5, "C")
		want := 0.0178 * (1 + 0.00393*50) / 2.5 * 1000
		assert.InDelta(t, want, r, 1e-9)
	})

	t.Run("reactance from method bucket", func(t *testing.T) {
		_, x := e.LineImpedance("Cu", 70, 2.5, "C")
		assert.InDelta(t, 0.09, x, 1e-12)
	})

	t.Run("reactance falls back to method default", func(t *testing.T) {
		_, x := e.LineImpedance("Cu", 70, 2.5, "B1")
		assert.InDelta(t, 0.085, x, 1e-12)
	})

	t.Run("unknown conductor returns default reactance only", func(t *testing.T) {
		r, x := e.LineImpedance("Ag", 70, 2.5, "Z9")
		assert.Zero(t, r)
		assert.InDelta(t, 0.08, x, 1e-12)
	})
}
