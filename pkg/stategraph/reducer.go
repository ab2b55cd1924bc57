package stategraph

import (
	"github.com/finagent-ai/finagent/pkg/stategraph/registry"
)

// ErrorsField is the accumulating state field where the engine records node
// and routing failures. Every reducer registry created by NewReducers marks
// it as appending.
const ErrorsField = "errors"

// Reducer merges a node's update for a single field into the current value.
type Reducer func(current, update any) any

// Replace is the default reducer: last writer wins.
func Replace(current, update any) any {
	return update
}

// Append concatenates the update sequence onto the current sequence. A nil
// update leaves the current value unchanged. The update must itself be a
// sequence; a bare scalar is ignored rather than merged, so a misbehaving
// node cannot corrupt an accumulating field mid-run.
func Append(current, update any) any {
	add := asList(update)
	if len(add) == 0 {
		if cur := asList(current); cur != nil {
			return cur
		}
		return current
	}
	cur := asList(current)
	out := make([]any, 0, len(cur)+len(add))
	out = append(out, cur...)
	out = append(out, add...)
	return out
}

// Reducers maps field names to merge strategies. Fields without an entry use
// Replace semantics, including keys that were never declared — merge never
// fails on an unknown key.
//
// A field's strategy is fixed for the lifetime of a run: register all
// accumulating fields before the first Start.
type Reducers struct {
	fields *registry.Registry[string, Reducer]
}

// NewReducers creates a reducer registry with ErrorsField pre-registered as
// accumulating.
func NewReducers() *Reducers {
	r := &Reducers{fields: registry.New[string, Reducer]()}
	r.fields.Register(ErrorsField, Append)
	return r
}

// Accumulate marks fields as append-on-write and returns the registry for
// chaining.
func (r *Reducers) Accumulate(fields ...string) *Reducers {
	for _, f := range fields {
		r.fields.Register(f, Append)
	}
	return r
}

// Register sets a custom reducer for a field and returns the registry for
// chaining.
func (r *Reducers) Register(field string, fn Reducer) *Reducers {
	r.fields.Register(field, fn)
	return r
}

// Merge applies a partial update to the current state and returns the new
// state. Neither input is mutated. Keys absent from the update are left
// untouched; keys present use the field's registered reducer, defaulting to
// Replace.
func (r *Reducers) Merge(current, update State) State {
	out := current.Clone()
	for k, v := range update {
		fn, ok := r.fields.Get(k)
		if !ok {
			fn = Replace
		}
		out[k] = fn(current[k], v)
	}
	return out
}
