package fieldscrape

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// envelopeKeys are wrapper keys some extraction services nest their field
// mapping under.
var envelopeKeys = []string{"data", "result", "results", "fields", "extracted"}

// NormalizeRecord maps a loosely shaped extraction response onto a
// StructuredRecord holding exactly the requested fields.
//
// Requested fields missing from the response map to an empty list. Scalars
// become one-element lists, nested lists are flattened, objects are encoded
// as compact JSON, and null or blank values are dropped. Keys that were not
// requested are ignored. Field names match exactly first, then
// case-insensitively against keys no requested field matches exactly.
func NormalizeRecord(fields FieldList, response any) *StructuredRecord {
	rec := NewRecord(fields)

	m := unwrapEnvelope(fields, asObject(response))
	if m == nil {
		return rec
	}

	requested := make(map[string]bool, len(fields))
	for _, name := range rec.Fields() {
		requested[name] = true
	}

	// Keys claimed by an exact match are not offered to other fields.
	folded := make(map[string]any, len(m))
	for k, v := range m {
		if requested[k] {
			continue
		}
		folded[strings.ToLower(strings.TrimSpace(k))] = v
	}

	for _, name := range rec.Fields() {
		v, ok := m[name]
		if !ok {
			v, ok = folded[strings.ToLower(name)]
		}
		if !ok {
			continue
		}
		rec.Set(name, valueStrings(v))
	}
	return rec
}

// asObject converts the common decoded shapes of a JSON object to map[string]any.
func asObject(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case map[string][]string:
		out := make(map[string]any, len(m))
		for k, vals := range m {
			out[k] = vals
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, s := range m {
			out[k] = s
		}
		return out
	}
	return nil
}

// unwrapEnvelope descends into a single wrapper object when the top level
// holds none of the requested fields.
func unwrapEnvelope(fields FieldList, m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	for _, name := range fields {
		if _, ok := m[name]; ok {
			return m
		}
	}
	for _, key := range envelopeKeys {
		if inner := asObject(m[key]); inner != nil {
			return inner
		}
	}
	return m
}

// valueStrings flattens a decoded JSON value into a list of non-blank strings.
func valueStrings(v any) []string {
	out := []string{}
	var walk func(any)
	walk = func(v any) {
		switch x := v.(type) {
		case nil:
		case []any:
			for _, item := range x {
				walk(item)
			}
		case []string:
			for _, item := range x {
				walk(item)
			}
		default:
			if s := strings.TrimSpace(scalarString(x)); s != "" {
				out = append(out, s)
			}
		}
	}
	walk(v)
	return out
}

func scalarString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case map[string]any:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
	return fmt.Sprint(v)
}
