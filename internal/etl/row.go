package etl

import "time"

// ── Row ────────────────────────────────────────────────────
// Flat intermediate format between a source and a sink. Sources map
// each decoded object to one Row; sinks write Rows as table rows or
// documents.

// Field types a sink knows how to store.
const (
	TypeText     = "text"
	TypeNumber   = "number"
	TypeBoolean  = "boolean"
	TypeDatetime = "datetime"
)

// Field describes a single column in a dataset.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Schema describes the shape of the rows a source emits.
type Schema struct {
	Fields []Field `json:"fields"`
}

// FieldNames returns the field names in declaration order.
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// TypeOf returns the declared type of name, or TypeText.
func (s *Schema) TypeOf(name string) string {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Type
		}
	}
	return TypeText
}

// Row is a single row of data flowing through the pipeline. Values are
// nil, string, int, float64, bool or time.Time.
type Row struct {
	Data map[string]any `json:"data"`
}

// Date returns t, or nil when t is the zero time.
func Date(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

// Text returns s, or nil when s is empty.
func Text(s string) any {
	if s == "" {
		return nil
	}
	return s
}
