package reference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeTables(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tables.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("missing file is an error", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.json"), zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("unparseable document is an error", func(t *testing.T) {
		path := writeTables(t, "{not json")
		_, err := Load(path, zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("numeric keys converted", func(t *testing.T) {
		path := writeTables(t, `{
			"standard_sections": [4, 1.5, 2.5],
			"ampacity_base": {"C": {"1.5": 20, "2.5": 27}},
			"loaded_factors": {"C": {"2": 1.1, "3": 1.0}},
			"grouping_factors": {"1": 1.0, "2": 0.8},
			"temperature_factors": {"air": {"pvc": {"30": 1.0, "40": 0.87}}}
		}`)
		tables, err := Load(path, zap.NewNop())
		require.NoError(t, err)

		assert.Equal(t, []float64{1.5, 2.5, 4}, tables.StandardSections)
		assert.InDelta(t, 27.0, tables.AmpacityBase["C"][2.5], 1e-12)
		assert.InDelta(t, 1.1, tables.LoadedFactors["C"][2], 1e-12)
		assert.InDelta(t, 0.8, tables.GroupingFactors[2], 1e-12)
		assert.InDelta(t, 0.87, tables.TempFactors[MediumAir]["pvc"][40], 1e-12)
	})

	t.Run("malformed entries skipped not fatal", func(t *testing.T) {
		path := writeTables(t, `{
			"ampacity_base": {"C": {"1.5": 20}, "D": {"oops": 1}},
			"grouping_factors": {"1": 1.0, "oops": 0.5},
			"temperature_factors": {"air": {"pvc": {"30": 1.0}, "bad": {"x": 1}}}
		}`)
		tables, err := Load(path, zap.NewNop())
		require.NoError(t, err)

		assert.Contains(t, tables.AmpacityBase, "C")
		assert.NotContains(t, tables.AmpacityBase, "D")
		assert.Contains(t, tables.GroupingFactors, 1)
		assert.Len(t, tables.GroupingFactors, 1)
		assert.Contains(t, tables.TempFactors[MediumAir], "pvc")
		assert.NotContains(t, tables.TempFactors[MediumAir], "bad")
	})

	t.Run("defaults applied", func(t *testing.T) {
		path := writeTables(t, `{}`)
		tables, err := Load(path, zap.NewNop())
		require.NoError(t, err)

		assert.InDelta(t, 0.08, tables.ReactanceData.Default, 1e-12)
		assert.Equal(t, []Medium{MediumAir, MediumSoil}, tables.Media)
	})
}
