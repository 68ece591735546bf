package record

import (
	"net/url"

	"github.com/google/uuid"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ── Projections ────────────────────────────────────────────
// List and Map decode a nested array/object element by element.
// An absent key short-circuits to an empty container before any
// element is extracted or decoded.

// Extractor converts one raw element into the decoder's input type.
// Extractors apply the same defaults as the field accessors.
type Extractor[K any] func(v any) K

// List decodes the array at key into a slice, preserving order.
func List[K, V any](r Record, key string, extract Extractor[K], decode func(K) V) []V {
	if !r.Has(key) {
		return []V{}
	}
	items, ok := r.LookupArray(key)
	if !ok {
		return []V{}
	}
	out := make([]V, len(items))
	for i, item := range items {
		out[i] = decode(extract(item))
	}
	return out
}

// Map decodes the object at key into an ordered map keyed by field name.
func Map[K, V any](r Record, key string, extract Extractor[K], decode func(K) V) *orderedmap.OrderedMap[string, V] {
	out := orderedmap.New[string, V]()
	if !r.Has(key) {
		return out
	}
	nested, ok := r.LookupObject(key)
	if !ok {
		return out
	}
	for pair := nested.fields.Oldest(); pair != nil; pair = pair.Next() {
		out.Set(pair.Key, decode(extract(pair.Value)))
	}
	return out
}

// Strings returns the string array at key. Non-string elements become "".
func Strings(r Record, key string) []string {
	return List(r, key, AsString, identity[string])
}

func identity[T any](v T) T { return v }

// ── Element extractors ─────────────────────────────────────

func AsInt(v any) int {
	if n, ok := toInt(v); ok {
		return n
	}
	return -1
}

func AsFloat(v any) float64 {
	if f, ok := toFloat(v); ok {
		return f
	}
	return -1.0
}

func AsBool(v any) bool {
	b, _ := toBool(v)
	return b
}

func AsString(v any) string {
	s, _ := v.(string)
	return s
}

func AsUUID(v any) uuid.UUID {
	id, _ := toUUID(v)
	return id
}

func AsURL(v any) *url.URL {
	u, _ := toURL(v)
	return u
}

func AsRecord(v any) Record {
	if r, ok := v.(Record); ok && r.fields != nil {
		return r
	}
	return Empty()
}
