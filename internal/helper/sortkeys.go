package helper

import (
	"bytes"
	"encoding/json"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Field is a single key/value pair of an Object.
type Field struct {
	Key   string
	Value any
}

// Object is a flat JSON object with a fixed key order.
// It marshals to JSON in the order of its fields.
type Object []Field

// SortObjectByKey returns a copy of obj with its keys ordered by
// locale-aware comparison (Unicode collation, root locale). Keys that
// collate equal are ordered by their bytes, so the result is deterministic.
// Nested values are copied as is and are not sorted.
func SortObjectByKey(obj map[string]any) Object {
	out := make(Object, 0, len(obj))
	for k, v := range obj {
		out = append(out, Field{Key: k, Value: v})
	}

	// Collator keeps internal buffers; one per call keeps this safe for
	// concurrent callers.
	c := collate.New(language.Und)
	sort.SliceStable(out, func(i, j int) bool {
		if r := c.CompareString(out[i].Key, out[j].Key); r != 0 {
			return r < 0
		}
		return out[i].Key < out[j].Key
	})

	return out
}

// Keys returns the keys of o in order.
func (o Object) Keys() []string {
	keys := make([]string, len(o))
	for i, f := range o {
		keys[i] = f.Key
	}
	return keys
}

// Map returns the unordered view of o.
func (o Object) Map() map[string]any {
	m := make(map[string]any, len(o))
	for _, f := range o {
		m[f.Key] = f.Value
	}
	return m
}

// MarshalJSON implements json.Marshaler, keeping the field order.
func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
