// Package records defines the generic record type that flows through the
// pipeline. A Record is an open-ended field map: the extractor produces them
// from JSON, the raw store persists them as documents, and the transformer
// reshapes them into the canonical staging layout.
//
// Records deliberately carry no schema. Any field may be absent, null, or of
// an unexpected type; downstream stages are responsible for coercion.
package records

import (
	"fmt"
	"log"
)

// Record is a single row-like document keyed by source field name.
type Record map[string]any

// Clone returns a deep copy of the record. Map and slice values are copied
// recursively; scalar values are copied by assignment. The second return is
// false when some value could not be deep-copied and was shared by reference
// instead.
func (r Record) Clone() (Record, bool) {
	out := make(Record, len(r))
	ok := true
	for k, v := range r {
		cv, cok := cloneValue(v)
		if !cok {
			ok = false
		}
		out[k] = cv
	}
	return out, ok
}

// CloneBatch deep-copies a batch of records so the caller's data is never
// mutated by later stages. When a record resists deep copying (a value of an
// unsupported type), that record degrades to a per-key shallow copy and
// processing continues; copy failure is never fatal.
func CloneBatch(in []Record) []Record {
	if len(in) == 0 {
		return []Record{}
	}
	out := make([]Record, 0, len(in))
	for i, r := range in {
		c, ok := r.Clone()
		if !ok {
			log.Printf("records: warning: deep copy of record %d fell back to shallow copy", i)
		}
		out = append(out, c)
	}
	return out
}

// cloneValue deep-copies JSON-shaped values (maps, slices, scalars). Values of
// other kinds are returned as-is with ok=false, which makes the copy shallow
// for that value only.
func cloneValue(v any) (any, bool) {
	switch t := v.(type) {
	case nil, bool, string, int, int32, int64, float32, float64:
		return t, true
	case fmt.Stringer:
		// json.Number and friends are immutable; sharing is safe.
		return t, true
	case map[string]any:
		m := make(map[string]any, len(t))
		ok := true
		for k, vv := range t {
			cv, cok := cloneValue(vv)
			if !cok {
				ok = false
			}
			m[k] = cv
		}
		return m, ok
	case Record:
		c, ok := t.Clone()
		return c, ok
	case []any:
		s := make([]any, len(t))
		ok := true
		for i, vv := range t {
			cv, cok := cloneValue(vv)
			if !cok {
				ok = false
			}
			s[i] = cv
		}
		return s, ok
	default:
		return v, false
	}
}
