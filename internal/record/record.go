package record

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/buger/jsonparser"
	"github.com/spf13/cast"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ── Record ─────────────────────────────────────────────────
// Universal decoding input: one JSON object as received from the API.
// Keys keep their document order. Values are one of:
//   string | json.Number | bool | nil | Record | []any
//
// A Record has no mutating methods, so sharing one between decoded
// objects is safe.

// Record is an immutable, ordered JSON object.
type Record struct {
	fields *orderedmap.OrderedMap[string, any]
}

// Empty returns a Record with no fields.
func Empty() Record {
	return Record{fields: orderedmap.New[string, any]()}
}

// Parse decodes a JSON document whose top level is an object.
func Parse(data []byte) (Record, error) {
	value, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return Record{}, fmt.Errorf("parse record: %w", err)
	}
	if dataType != jsonparser.Object {
		return Record{}, fmt.Errorf("parse record: expected object, got %s", dataType)
	}
	return parseObject(value)
}

// MustParse is like Parse but panics on malformed input.
// Intended for fixtures and tests.
func MustParse(data string) Record {
	r, err := Parse([]byte(data))
	if err != nil {
		panic(err)
	}
	return r
}

// FromMap builds a Record from a plain Go map. Keys are sorted since Go
// maps carry no order. Numbers are normalized to json.Number and nested
// maps become Records.
func FromMap(m map[string]any) Record {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := orderedmap.New[string, any]()
	for _, k := range keys {
		fields.Set(k, normalize(m[k]))
	}
	return Record{fields: fields}
}

func normalize(v any) any {
	switch n := v.(type) {
	case map[string]any:
		return FromMap(n)
	case []any:
		items := make([]any, len(n))
		for i, item := range n {
			items[i] = normalize(item)
		}
		return items
	case []string:
		items := make([]any, len(n))
		for i, item := range n {
			items[i] = item
		}
		return items
	case []map[string]any:
		items := make([]any, len(n))
		for i, item := range n {
			items[i] = FromMap(item)
		}
		return items
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return json.Number(cast.ToString(n))
	default:
		return v
	}
}

// Has reports whether key is present, including explicit nulls.
func (r Record) Has(key string) bool {
	if r.fields == nil {
		return false
	}
	_, ok := r.fields.Get(key)
	return ok
}

// Raw returns the stored value for key.
func (r Record) Raw(key string) (any, bool) {
	if r.fields == nil {
		return nil, false
	}
	return r.fields.Get(key)
}

// Len returns the number of fields.
func (r Record) Len() int {
	if r.fields == nil {
		return 0
	}
	return r.fields.Len()
}

// Keys returns field names in document order.
func (r Record) Keys() []string {
	keys := make([]string, 0, r.Len())
	if r.fields == nil {
		return keys
	}
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// MarshalJSON re-encodes the record, preserving key order.
func (r Record) MarshalJSON() ([]byte, error) {
	if r.fields == nil {
		return []byte("{}"), nil
	}
	return r.fields.MarshalJSON()
}

// ── jsonparser walk ────────────────────────────────────────

func parseObject(data []byte) (Record, error) {
	fields := orderedmap.New[string, any]()
	err := jsonparser.ObjectEach(data, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		v, err := parseValue(value, dataType)
		if err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		fields.Set(string(key), v)
		return nil
	})
	if err != nil {
		return Record{}, fmt.Errorf("parse record: %w", err)
	}
	return Record{fields: fields}, nil
}

func parseArray(data []byte) ([]any, error) {
	items := []any{}
	var inner error
	_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if inner != nil {
			return
		}
		if err != nil {
			inner = err
			return
		}
		v, err := parseValue(value, dataType)
		if err != nil {
			inner = err
			return
		}
		items = append(items, v)
	})
	if err != nil {
		return nil, err
	}
	if inner != nil {
		return nil, inner
	}
	return items, nil
}

func parseValue(value []byte, dataType jsonparser.ValueType) (any, error) {
	switch dataType {
	case jsonparser.String:
		return jsonparser.ParseString(value)
	case jsonparser.Number:
		return json.Number(value), nil
	case jsonparser.Boolean:
		return jsonparser.ParseBoolean(value)
	case jsonparser.Null:
		return nil, nil
	case jsonparser.Object:
		return parseObject(value)
	case jsonparser.Array:
		return parseArray(value)
	default:
		return nil, fmt.Errorf("unsupported json value %s", dataType)
	}
}
