package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQueryList(t *testing.T) {
	t.Run("absent key", func(t *testing.T) {
		assert.Nil(t, ParseQueryList(map[string][]string{}, "circuit"))
	})

	t.Run("comma separated", func(t *testing.T) {
		q := map[string][]string{"circuit": {"F1, F2 ,F3"}}
		assert.Equal(t, []string{"F1", "F2", "F3"}, ParseQueryList(q, "circuit"))
	})

	t.Run("repeated params", func(t *testing.T) {
		q := map[string][]string{"circuit": {" F1", "F2 "}}
		assert.Equal(t, []string{"F1", "F2"}, ParseQueryList(q, "circuit"))
	})
}
