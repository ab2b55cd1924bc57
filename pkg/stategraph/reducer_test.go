package stategraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReplace_LastWriterWins(t *testing.T) {
	assert.Equal(t, "new", Replace("old", "new"))
	assert.Equal(t, 2, Replace(1, 2))
	assert.Nil(t, Replace("old", nil))
}

func TestAppend_Concatenates(t *testing.T) {
	result := Append([]any{"a"}, []any{"b", "c"})
	assert.Equal(t, []any{"a", "b", "c"}, result)
}

func TestAppend_NilUpdateIsNoOp(t *testing.T) {
	current := []any{"a"}
	assert.Equal(t, current, Append(current, nil))
}

func TestAppend_EmptyCurrent(t *testing.T) {
	assert.Equal(t, []any{"x"}, Append(nil, []any{"x"}))
}

func TestAppend_DoesNotMutateCurrent(t *testing.T) {
	current := []any{"a"}
	snapshot := append([]any(nil), current...)

	_ = Append(current, []any{"b"})

	assert.Equal(t, snapshot, current)
}

func TestAppend_StringSliceUpdate(t *testing.T) {
	result := Append([]any{"a"}, []string{"b"})
	assert.Equal(t, []any{"a", "b"}, result)
}

func TestMerge_DefaultReplace(t *testing.T) {
	r := NewReducers()

	merged := r.Merge(State{"status": "draft", "count": 1}, State{"status": "final"})

	assert.Equal(t, "final", merged.String("status"))
	assert.Equal(t, 1, merged.Int("count")) // untouched keys carry over
}

func TestMerge_ErrorsFieldAccumulates(t *testing.T) {
	r := NewReducers()

	merged := r.Merge(
		State{ErrorsField: []any{"first"}},
		State{ErrorsField: []any{"second"}},
	)

	assert.Equal(t, []any{"first", "second"}, merged.List(ErrorsField))
}

func TestMerge_AccumulateRegistersAppend(t *testing.T) {
	r := NewReducers().Accumulate("findings")

	s := r.Merge(State{"findings": []any{1}}, State{"findings": []any{2}})
	s = r.Merge(s, State{"findings": []any{3}})

	assert.Equal(t, []any{1, 2, 3}, s.List("findings"))
}

func TestMerge_UnknownKeysPassThrough(t *testing.T) {
	r := NewReducers()

	merged := r.Merge(State{}, State{"novel": "value"})

	assert.Equal(t, "value", merged.String("novel"))
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	r := NewReducers()
	current := State{"a": 1}
	update := State{"a": 2, "b": 3}

	merged := r.Merge(current, update)

	assert.Equal(t, 1, current.Int("a"))
	assert.Equal(t, 2, merged.Int("a"))
	assert.Equal(t, 3, merged.Int("b"))
}

func TestMerge_EmptyUpdateIsIdentity(t *testing.T) {
	r := NewReducers()
	current := State{"a": 1, ErrorsField: []any{"e"}}

	merged := r.Merge(current, State{})

	assert.Equal(t, current, merged)
}

func TestReducers_RegisterCustom(t *testing.T) {
	max := func(current, update any) any {
		c, _ := current.(int)
		u, _ := update.(int)
		if u > c {
			return u
		}
		return c
	}
	r := NewReducers().Register("peak", max)

	merged := r.Merge(State{"peak": 5}, State{"peak": 3})

	assert.Equal(t, 5, merged.Int("peak"))
}
