package stategraph

// State is the shared record threaded through the graph. Nodes receive the
// current state and return a partial update (a State holding only the keys
// they want to change); they must never mutate the state they were given.
//
// Values should be JSON-serializable so the state survives the checkpoint
// round-trip. Accumulating fields hold []any.
type State map[string]any

// Clone returns a shallow copy of the state. Container values are shared;
// the reducer registry takes care of copy-on-write for accumulating fields.
func (s State) Clone() State {
	if s == nil {
		return State{}
	}
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// String returns the string value for key, or "" if missing or not a string.
func (s State) String(key string) string {
	v, _ := s[key].(string)
	return v
}

// Bool returns the bool value for key, or false if missing or not a bool.
func (s State) Bool(key string) bool {
	v, _ := s[key].(bool)
	return v
}

// Int returns the integer value for key, or 0 if missing.
// JSON deserialization produces float64, so both forms are accepted.
func (s State) Int(key string) int {
	switch v := s[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// Float returns the float64 value for key, or 0 if missing.
func (s State) Float(key string) float64 {
	switch v := s[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// List returns the accumulated sequence for key, or nil if missing.
func (s State) List(key string) []any {
	return asList(s[key])
}

// Map returns the nested map value for key, or nil if missing.
func (s State) Map(key string) map[string]any {
	v, _ := s[key].(map[string]any)
	return v
}

// asList normalizes a state value to []any. Returns nil for nil input or
// any value that is not a sequence.
func asList(v any) []any {
	switch val := v.(type) {
	case nil:
		return nil
	case []any:
		return val
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out
	case []map[string]any:
		out := make([]any, len(val))
		for i, m := range val {
			out[i] = m
		}
		return out
	}
	return nil
}
