package engine_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cablecalc/internal/engine"
)

func recommendFixture() engine.RecommendInput {
	return engine.RecommendInput{
		VoltageV:         400,
		CosPhi:           0.9,
		LengthM:          10,
		Conductor:        "Cu",
		InsulationKey:    "pvc",
		InsulationThetaC: 70,
		Method:           "C",
		LoadedCores:      3,
		GroupFactor:      1.0,
		TempFactor:       1.0,
		DropLimitPct:     f(5.0),
		CurrentAreaMM2:   1.5,
		ParallelCount:    1,
		IcalcTotalA:      25,
	}
}

func TestRecommend(t *testing.T) {
	e := newTestEngine()

	t.Run("larger section comes first", func(t *testing.T) {
		recs := e.Recommend(recommendFixture())
		require.NotEmpty(t, recs)
		assert.Contains(t, recs[0], "Increase cross-section to 2.5")
		assert.LessOrEqual(t, len(recs), 4)
	})

	t.Run("offers a hotter insulation class", func(t *testing.T) {
		recs := e.Recommend(recommendFixture())
		found := false
		for _, r := range recs {
			if strings.Contains(r, "xlpe insulation") {
				found = true
			}
		}
		assert.True(t, found, "expected an insulation remedy in %v", recs)
	})

	t.Run("nothing viable falls back to the generic remedy", func(t *testing.T) {
		in := recommendFixture()
		in.IcalcTotalA = 2000
		in.DropLimitPct = nil
		recs := e.Recommend(in)
		require.Len(t, recs, 1)
		assert.Equal(t, "Reduce the number of grouped circuits or move to a higher voltage class.", recs[0])
	})

	t.Run("no current no remedies", func(t *testing.T) {
		in := recommendFixture()
		in.IcalcTotalA = 0
		assert.Nil(t, e.Recommend(in))
	})

	t.Run("degenerate derating no remedies", func(t *testing.T) {
		in := recommendFixture()
		in.GroupFactor = 0
		assert.Nil(t, e.Recommend(in))
	})

	t.Run("parallel split covers a long run", func(t *testing.T) {
		in := recommendFixture()
		in.LengthM = 800
		in.CurrentAreaMM2 = 25
		recs := e.Recommend(in)
		found := false
		for _, r := range recs {
			if strings.Contains(r, "parallel cables") {
				found = true
			}
		}
		assert.True(t, found, "expected a parallel split remedy in %v", recs)
	})
}
