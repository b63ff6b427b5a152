package fieldscrape

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// StructuredRecord maps field names to the ordered values extracted for them.
//
// The key set always equals the de-duplicated FieldList the record was built
// from; a field the model found nothing for maps to an empty slice, never to a
// missing key. Key order is the field order and survives JSON round-trips.
type StructuredRecord struct {
	fields []string
	values map[string][]string
}

// NewRecord returns a record holding every field in fields, each mapped to an
// empty value list.
func NewRecord(fields FieldList) *StructuredRecord {
	r := &StructuredRecord{values: make(map[string][]string, len(fields))}
	for _, name := range fields.Unique() {
		r.fields = append(r.fields, name)
		r.values[name] = []string{}
	}
	return r
}

// Set replaces the values of field. A field not yet in the record is
// appended to the key order.
func (r *StructuredRecord) Set(field string, values []string) {
	if r.values == nil {
		r.values = make(map[string][]string)
	}
	if _, ok := r.values[field]; !ok {
		r.fields = append(r.fields, field)
	}
	cp := make([]string, len(values))
	copy(cp, values)
	r.values[field] = cp
}

// Fields returns the field names in record order.
func (r *StructuredRecord) Fields() []string {
	out := make([]string, len(r.fields))
	copy(out, r.fields)
	return out
}

// Values returns a copy of the values stored for field, or nil if the record
// has no such field.
func (r *StructuredRecord) Values(field string) []string {
	vals, ok := r.values[field]
	if !ok {
		return nil
	}
	out := make([]string, len(vals))
	copy(out, vals)
	return out
}

// Has reports whether field is a key of the record.
func (r *StructuredRecord) Has(field string) bool {
	_, ok := r.values[field]
	return ok
}

// Len returns the number of fields.
func (r *StructuredRecord) Len() int {
	return len(r.fields)
}

// Rows returns the length of the longest value list.
func (r *StructuredRecord) Rows() int {
	n := 0
	for _, vals := range r.values {
		if len(vals) > n {
			n = len(vals)
		}
	}
	return n
}

// Map returns the record as a plain map. Key order is lost.
func (r *StructuredRecord) Map() map[string][]string {
	m := make(map[string][]string, len(r.fields))
	for _, name := range r.fields {
		m[name] = r.Values(name)
	}
	return m
}

// Equal reports whether both records have the same fields in the same order
// with the same values.
func (r *StructuredRecord) Equal(other *StructuredRecord) bool {
	if r == nil || other == nil {
		return r == other
	}
	if len(r.fields) != len(other.fields) {
		return false
	}
	for i, name := range r.fields {
		if other.fields[i] != name {
			return false
		}
		a, b := r.values[name], other.values[name]
		if len(a) != len(b) {
			return false
		}
		for j := range a {
			if a[j] != b[j] {
				return false
			}
		}
	}
	return true
}

// MarshalJSON encodes the record as a JSON object in field order.
func (r StructuredRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		vals := r.values[name]
		if vals == nil {
			vals = []string{}
		}
		val, err := json.Marshal(vals)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object of string arrays, keeping key order.
func (r *StructuredRecord) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("structured record: expected object, got %v", tok)
	}

	rec := StructuredRecord{values: make(map[string][]string)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("structured record: expected field name, got %v", tok)
		}

		var vals []string
		if err := dec.Decode(&vals); err != nil {
			return fmt.Errorf("structured record: field %q: %w", name, err)
		}
		if vals == nil {
			vals = []string{}
		}
		rec.Set(name, vals)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*r = rec
	return nil
}
