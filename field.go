package fieldscrape

import "strings"

// FieldList is an ordered sequence of requested field names.
// Duplicates are allowed; an empty list is invalid.
type FieldList []string

// ParseFields splits a comma-separated field string into a FieldList.
// Items are trimmed and blank items dropped. Returns EINVALID if no field
// names remain.
func ParseFields(s string) (FieldList, error) {
	var fields FieldList
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			fields = append(fields, name)
		}
	}
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	return fields, nil
}

// Validate returns an error if the list is empty or holds a blank name.
func (l FieldList) Validate() error {
	if len(l) == 0 {
		return Errorf(EINVALID, "at least one field required")
	}
	for _, name := range l {
		if strings.TrimSpace(name) == "" {
			return Errorf(EINVALID, "field names must not be blank")
		}
	}
	return nil
}

// Unique returns the field names in first-occurrence order with duplicates removed.
func (l FieldList) Unique() []string {
	seen := make(map[string]bool, len(l))
	out := make([]string, 0, len(l))
	for _, name := range l {
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
