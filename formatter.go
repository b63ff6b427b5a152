package fieldscrape

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
)

// ExportFormat identifies a file representation of a StructuredRecord.
type ExportFormat string

// Supported export formats.
const (
	ExportCSV  ExportFormat = "csv"
	ExportJSON ExportFormat = "json"
)

// ParseExportFormat returns the format named s.
// Returns EINVALID for unsupported formats.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(s); f {
	case ExportCSV, ExportJSON:
		return f, nil
	}
	return "", Errorf(EINVALID, "unsupported export format %q", s)
}

// Filename returns the fixed download filename for the format.
func (f ExportFormat) Filename() string {
	return "results." + string(f)
}

// ContentType returns the MIME type of the format.
func (f ExportFormat) ContentType() string {
	if f == ExportCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/json"
}

// Format renders rec in format f.
func (f ExportFormat) Format(rec *StructuredRecord) ([]byte, error) {
	switch f {
	case ExportCSV:
		return FormatCSV(rec)
	case ExportJSON:
		return FormatJSON(rec)
	}
	return nil, Errorf(EINVALID, "unsupported export format %q", string(f))
}

// FormatCSV renders a record as delimited text.
//
// The header row holds the field names in record order. There is one data row
// per index up to the longest value list; a field whose list is shorter
// contributes an empty cell. Fields are not aligned by any shared row identity.
func FormatCSV(rec *StructuredRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	fields := rec.Fields()
	if err := w.Write(fields); err != nil {
		return nil, err
	}

	columns := make([][]string, len(fields))
	for i, name := range fields {
		columns[i] = rec.Values(name)
	}

	for row := 0; row < rec.Rows(); row++ {
		cells := make([]string, len(fields))
		for i, col := range columns {
			if row < len(col) {
				cells[i] = col[row]
			}
		}
		if err := w.Write(cells); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FormatJSON renders a record as indented JSON with keys in record order and
// values in stored order.
func FormatJSON(rec *StructuredRecord) ([]byte, error) {
	compact, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
