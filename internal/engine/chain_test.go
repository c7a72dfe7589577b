package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cablecalc/internal/engine"
)

func priorChain() []engine.PriorSegment {
	return []engine.PriorSegment{
		{Circuit: "F1", From: "A", To: "B", DropPct: 1.0, LengthM: f(10), AreaMM2: f(2.5)},
		{Circuit: "F1", From: "B", To: "C", DropPct: 1.0, LengthM: f(10), AreaMM2: f(2.5)},
		{Circuit: "F1", From: "C", To: "D", DropPct: 1.0, LengthM: f(10), AreaMM2: f(2.5)},
	}
}

func TestUpstreamDrop(t *testing.T) {
	self := engine.ChainKey{From: "D", To: "E", LengthM: f(5), AreaMM2: f(2.5)}

	t.Run("sums the whole chain", func(t *testing.T) {
		total := engine.UpstreamDrop("F1", "D", self, priorChain())
		assert.InDelta(t, 3.0, total, 1e-12)
	})

	t.Run("partial chain from the middle", func(t *testing.T) {
		total := engine.UpstreamDrop("F1", "C", engine.ChainKey{From: "C", To: "X"}, priorChain())
		assert.InDelta(t, 2.0, total, 1e-12)
	})

	t.Run("branch point contributes zero", func(t *testing.T) {
		total := engine.UpstreamDrop("F1", "X", self, priorChain())
		assert.Zero(t, total)
	})

	t.Run("other circuits do not chain", func(t *testing.T) {
		total := engine.UpstreamDrop("F2", "D", self, priorChain())
		assert.Zero(t, total)
	})

	t.Run("excludes the record mirroring the live segment", func(t *testing.T) {
		// D→E is the stored copy of the segment being recomputed; the walk
		// from D reaches E via the E→D feed and must not count the copy.
		prior := []engine.PriorSegment{
			{Circuit: "F1", From: "E", To: "D", DropPct: 2.0, LengthM: f(20), AreaMM2: f(4)},
			{Circuit: "F1", From: "D", To: "E", DropPct: 9.0, LengthM: f(5), AreaMM2: f(2.5)},
		}
		total := engine.UpstreamDrop("F1", "D",
			engine.ChainKey{From: "D", To: "E", LengthM: f(5), AreaMM2: f(2.5)}, prior)
		assert.InDelta(t, 2.0, total, 1e-12)
	})

	t.Run("most recent duplicate wins", func(t *testing.T) {
		prior := []engine.PriorSegment{
			{Circuit: "F1", From: "A", To: "B", DropPct: 1.0, LengthM: f(10), AreaMM2: f(2.5)},
			{Circuit: "F1", From: "A", To: "B", DropPct: 5.0, LengthM: f(40), AreaMM2: f(2.5)},
		}
		total := engine.UpstreamDrop("F1", "B", engine.ChainKey{From: "B", To: "C"}, prior)
		assert.InDelta(t, 5.0, total, 1e-12)
	})

	t.Run("cycle terminates", func(t *testing.T) {
		loop := []engine.PriorSegment{
			{Circuit: "F1", From: "A", To: "B", DropPct: 1.0},
			{Circuit: "F1", From: "B", To: "A", DropPct: 1.0},
		}
		total := engine.UpstreamDrop("F1", "A", engine.ChainKey{From: "A", To: "Z"}, loop)
		assert.InDelta(t, 2.0, total, 1e-12)
	})

	t.Run("empty endpoint yields zero", func(t *testing.T) {
		assert.Zero(t, engine.UpstreamDrop("F1", "", self, priorChain()))
		assert.Zero(t, engine.UpstreamDrop("", "D", self, priorChain()))
	})
}
