package frontmatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// MarshalJSON emits the mapping as a JSON object with keys in insertion
// order.
func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m.vals[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON emits the variant's natural JSON shape: string, array of
// strings, or object.
func (v *Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindScalar:
		return json.Marshal(v.Scalar)
	case KindList:
		if v.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.List)
	case KindMap:
		return json.Marshal(v.Map)
	}
	return nil, fmt.Errorf("frontmatter: unknown value kind %d", v.Kind)
}

// FromJSON converts a decoded JSON object into a tree. Scalars of any JSON
// type are stringified; arrays become flat string lists; nested objects
// become one-level mappings. Shapes deeper than the supported subset are
// flattened via fmt.
func FromJSON(obj map[string]any) *Map {
	m := NewMap()
	for _, k := range sortedJSONKeys(obj) {
		m.Set(k, valueFromJSON(obj[k]))
	}
	return m
}

// ValueFromJSON converts a single decoded JSON value into a Value.
func ValueFromJSON(raw any) *Value {
	return valueFromJSON(raw)
}

func valueFromJSON(raw any) *Value {
	switch t := raw.(type) {
	case string:
		return String(t)
	case bool:
		return String(fmt.Sprintf("%v", t))
	case float64:
		return String(trimFloat(t))
	case nil:
		return String("")
	case []any:
		items := make([]string, 0, len(t))
		for _, e := range t {
			items = append(items, scalarString(e))
		}
		return Strings(items)
	case map[string]any:
		return Nested(FromJSON(t))
	}
	return String(fmt.Sprintf("%v", raw))
}

// scalarString renders a JSON value as a plain string list element.
func scalarString(raw any) string {
	switch t := raw.(type) {
	case string:
		return t
	case float64:
		return trimFloat(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// trimFloat renders integral floats without a decimal point.
func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}

// sortedJSONKeys returns map keys in a stable order. JSON objects do not
// preserve author order through encoding/json, so merged keys land in
// lexical order rather than hash order.
func sortedJSONKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
