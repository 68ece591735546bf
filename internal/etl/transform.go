package etl

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
	"github.com/spf13/cast"
)

// ── Transformer ────────────────────────────────────────────
// Transformers modify rows in-flight between source and sink. Each takes
// a row and returns a (possibly modified) row and whether to keep it.
//
// Pattern: Benthos processor chain.

// TransformConfig is a declarative transform definition (stored as JSON).
type TransformConfig struct {
	Type   string         `json:"type"   mapstructure:"type"` // "filter" | "rename" | "select" | "sort" | "limit" | "type_cast"
	Config map[string]any `json:"config" mapstructure:"config"`
}

// Transformer processes a single row.
type Transformer interface {
	Transform(Row) (Row, bool)
}

// TransformerFunc adapts a plain function to the Transformer interface.
type TransformerFunc func(Row) (Row, bool)

func (f TransformerFunc) Transform(r Row) (Row, bool) { return f(r) }

// ── Built-in Transforms ────────────────────────────────────

// FilterTransform drops rows where the field does not satisfy Op against
// Value. Rows missing the field, or holding null, are dropped.
type FilterTransform struct {
	Field string `mapstructure:"field"`
	Op    string `mapstructure:"op"` // "eq" | "neq" | "gt" | "lt" | "contains"
	Value any    `mapstructure:"value"`
}

func (t *FilterTransform) Transform(r Row) (Row, bool) {
	v, ok := r.Data[t.Field]
	if !ok || v == nil {
		return r, false
	}
	switch t.Op {
	case "eq":
		return r, text(v) == text(t.Value)
	case "neq":
		return r, text(v) != text(t.Value)
	case "contains":
		return r, strings.Contains(text(v), text(t.Value))
	case "gt", "lt":
		a, aErr := cast.ToFloat64E(v)
		b, bErr := cast.ToFloat64E(t.Value)
		if aErr != nil || bErr != nil {
			return r, false
		}
		if t.Op == "gt" {
			return r, a > b
		}
		return r, a < b
	default:
		return r, true
	}
}

// RenameTransform renames fields in a row.
type RenameTransform struct {
	Mapping map[string]string `mapstructure:"mapping"` // old name → new name
}

func (t *RenameTransform) Transform(r Row) (Row, bool) {
	r.Data = lo.MapKeys(r.Data, func(_ any, k string) string {
		if renamed, ok := t.Mapping[k]; ok {
			return renamed
		}
		return k
	})
	return r, true
}

// SelectTransform keeps only the listed fields.
type SelectTransform struct {
	Fields []string `mapstructure:"fields"`
}

func (t *SelectTransform) Transform(r Row) (Row, bool) {
	r.Data = lo.PickByKeys(r.Data, t.Fields)
	return r, true
}

// DedupeTransform drops rows whose key value was already seen.
type DedupeTransform struct {
	Key  string
	seen map[string]bool
}

func NewDedupeTransform(key string) *DedupeTransform {
	return &DedupeTransform{Key: key, seen: make(map[string]bool)}
}

func (t *DedupeTransform) Transform(r Row) (Row, bool) {
	v := text(r.Data[t.Key])
	if t.seen[v] {
		return r, false
	}
	t.seen[v] = true
	return r, true
}

// SortTransform orders the collected rows by a field. It passes rows
// through while streaming; Chain.Finish does the sorting.
type SortTransform struct {
	Field     string `mapstructure:"field"`
	Direction string `mapstructure:"direction"` // "asc" | "desc"
}

func (t *SortTransform) Transform(r Row) (Row, bool) { return r, true }

// LimitTransform keeps the first Count rows.
type LimitTransform struct {
	Count int `mapstructure:"count"`
	seen  int
}

func (t *LimitTransform) Transform(r Row) (Row, bool) {
	t.seen++
	return r, t.seen <= t.Count
}

// Full reports whether the limit will drop every further row.
func (t *LimitTransform) Full() bool { return t.seen >= t.Count }

// TypeCastTransform converts a field's value to another type. Values that
// do not convert become null.
type TypeCastTransform struct {
	Field    string `mapstructure:"field"`
	CastType string `mapstructure:"castType"` // "number" | "string" | "bool"
}

func (t *TypeCastTransform) Transform(r Row) (Row, bool) {
	v, ok := r.Data[t.Field]
	if !ok || v == nil {
		return r, true
	}
	var (
		out any
		err error
	)
	switch t.CastType {
	case "number":
		out, err = cast.ToFloat64E(v)
	case "string":
		out = text(v)
	case "bool":
		out, err = cast.ToBoolE(v)
	default:
		return r, true
	}
	if err != nil {
		out = nil
	}
	r.Data[t.Field] = out
	return r, true
}

// ── Building ───────────────────────────────────────────────

// BuildTransformers converts declarative configs into a chain. A dedupe
// on dedupeKey, when set, runs last.
func BuildTransformers(configs []TransformConfig, dedupeKey string) ([]Transformer, error) {
	var ts []Transformer
	for i, tc := range configs {
		var t Transformer
		switch tc.Type {
		case "filter":
			t = &FilterTransform{}
		case "rename":
			t = &RenameTransform{}
		case "select":
			t = &SelectTransform{}
		case "sort":
			t = &SortTransform{Direction: "asc"}
		case "limit":
			t = &LimitTransform{}
		case "type_cast":
			t = &TypeCastTransform{}
		default:
			return nil, fmt.Errorf("transform %d: unknown type %q", i, tc.Type)
		}
		if err := mapstructure.WeakDecode(tc.Config, t); err != nil {
			return nil, fmt.Errorf("transform %d (%s): %w", i, tc.Type, err)
		}
		ts = append(ts, t)
	}

	if dedupeKey != "" {
		ts = append(ts, NewDedupeTransform(dedupeKey))
	}
	return ts, nil
}

// ApplyTransformers runs a chain of transformers on a row.
func ApplyTransformers(r Row, ts []Transformer) (Row, bool) {
	for _, t := range ts {
		var keep bool
		r, keep = t.Transform(r)
		if !keep {
			return r, false
		}
	}
	return r, true
}

// ── Chain ──────────────────────────────────────────────────
// A sort needs every row before it can order them, so it splits the
// chain: the transforms before it stream while the source is read, and
// the ones after it run over the sorted batch in order.

// Chain is a transform chain split at its first sort.
type Chain struct {
	stream []Transformer
	sort   *SortTransform
	batch  []Transformer
}

// NewChain splits ts at the first SortTransform that names a field.
func NewChain(ts []Transformer) *Chain {
	i := slices.IndexFunc(ts, func(t Transformer) bool {
		s, ok := t.(*SortTransform)
		return ok && s.Field != ""
	})
	if i < 0 {
		return &Chain{stream: ts}
	}
	return &Chain{stream: ts[:i], sort: ts[i].(*SortTransform), batch: ts[i+1:]}
}

// Apply runs one row through the streaming part.
func (c *Chain) Apply(r Row) (Row, bool) { return ApplyTransformers(r, c.stream) }

// Saturated reports whether the streaming part holds a limit that is
// already full, so reading more rows cannot change the output.
func (c *Chain) Saturated() bool {
	return lo.ContainsBy(c.stream, func(t Transformer) bool {
		l, ok := t.(*LimitTransform)
		return ok && l.Full()
	})
}

// Finish sorts the rows kept by Apply and runs the rest of the chain
// over them.
func (c *Chain) Finish(rows []Row) []Row {
	if c.sort == nil {
		return rows
	}
	rows = sortRows(rows, c.sort)
	if len(c.batch) == 0 {
		return rows
	}
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r, keep := ApplyTransformers(r, c.batch); keep {
			out = append(out, r)
		}
	}
	return out
}

func sortRows(rows []Row, sort *SortTransform) []Row {
	dir := 1
	if sort.Direction == "desc" {
		dir = -1
	}
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b Row) int {
		return dir * compareValues(a.Data[sort.Field], b.Data[sort.Field])
	})
	return sorted
}

// compareValues orders nulls first, numbers numerically and everything
// else by its text form.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	fa, aErr := cast.ToFloat64E(a)
	fb, bErr := cast.ToFloat64E(b)
	if aErr == nil && bErr == nil {
		return cmp.Compare(fa, fb)
	}
	return strings.Compare(text(a), text(b))
}

func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
