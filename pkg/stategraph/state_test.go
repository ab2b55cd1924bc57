package stategraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_Clone_Independent(t *testing.T) {
	original := State{"name": "GS", "count": 2}
	clone := original.Clone()

	clone["name"] = "JPM"
	clone["extra"] = true

	assert.Equal(t, "GS", original.String("name"))
	assert.False(t, original.Bool("extra"))
	assert.Equal(t, "JPM", clone.String("name"))
}

func TestState_Clone_Nil(t *testing.T) {
	var s State
	clone := s.Clone()

	assert.NotNil(t, clone)
	assert.Empty(t, clone)
}

func TestState_Accessors(t *testing.T) {
	s := State{
		"name":    "acme",
		"active":  true,
		"count":   3,
		"ratio":   2.5,
		"items":   []any{"a", "b"},
		"nested":  map[string]any{"k": "v"},
		"badType": 42,
	}

	assert.Equal(t, "acme", s.String("name"))
	assert.Equal(t, "", s.String("badType"))
	assert.Equal(t, "", s.String("missing"))

	assert.True(t, s.Bool("active"))
	assert.False(t, s.Bool("missing"))

	assert.Equal(t, 3, s.Int("count"))
	assert.Equal(t, 0, s.Int("missing"))

	assert.Equal(t, 2.5, s.Float("ratio"))
	assert.Equal(t, 3.0, s.Float("count")) // ints convert

	assert.Equal(t, []any{"a", "b"}, s.List("items"))
	assert.Nil(t, s.List("missing"))

	assert.Equal(t, map[string]any{"k": "v"}, s.Map("nested"))
	assert.Nil(t, s.Map("missing"))
}

// Int must handle float64 because JSON round-trips through the checkpoint
// decode numbers as float64.
func TestState_Int_AfterJSONRoundTrip(t *testing.T) {
	s := State{"count": float64(7)}
	assert.Equal(t, 7, s.Int("count"))
}

func TestState_List_NormalizesStringSlices(t *testing.T) {
	s := State{"tags": []string{"x", "y"}}
	assert.Equal(t, []any{"x", "y"}, s.List("tags"))
}
