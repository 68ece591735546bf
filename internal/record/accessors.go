package record

import (
	"encoding/json"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cast"
)

// ── Field accessors ────────────────────────────────────────
// Lenient field, strict object: every accessor resolves a missing,
// mistyped or malformed field to a fixed default so one bad optional
// field never prevents building the rest of an object.
//
// Each default accessor is a thin adapter over a Lookup* variant that
// reports whether the value was usable.

// DateLayout is the calendar date format used by the API.
const DateLayout = "2006-01-02"

// NoDate is returned by Date when the field holds no valid date.
var NoDate = time.Time{}

// Int returns the integer at key, or -1.
func (r Record) Int(key string) int {
	if n, ok := r.LookupInt(key); ok {
		return n
	}
	return -1
}

// Float returns the number at key, or -1.0.
func (r Record) Float(key string) float64 {
	if f, ok := r.LookupFloat(key); ok {
		return f
	}
	return -1.0
}

// Bool returns the boolean at key, or false.
//
// An absent field and an explicit false are indistinguishable here.
// Use LookupBool when the difference matters.
func (r Record) Bool(key string) bool {
	b, _ := r.LookupBool(key)
	return b
}

// String returns the string at key, or "".
func (r Record) String(key string) string {
	s, _ := r.LookupString(key)
	return s
}

// Date returns the YYYY-MM-DD date at key, or NoDate.
func (r Record) Date(key string) time.Time {
	t, _ := r.LookupDate(key)
	return t
}

// UUID returns the canonical UUID at key, or uuid.Nil.
func (r Record) UUID(key string) uuid.UUID {
	id, _ := r.LookupUUID(key)
	return id
}

// URL returns the absolute URL at key, or nil.
func (r Record) URL(key string) *url.URL {
	u, _ := r.LookupURL(key)
	return u
}

// Object returns the nested record at key, or an empty Record.
func (r Record) Object(key string) Record {
	if nested, ok := r.LookupObject(key); ok {
		return nested
	}
	return Empty()
}

// Array returns a copy of the array at key, or an empty slice.
func (r Record) Array(key string) []any {
	if items, ok := r.LookupArray(key); ok {
		return items
	}
	return []any{}
}

// ── Lookup variants ────────────────────────────────────────

func (r Record) LookupInt(key string) (int, bool) {
	v, ok := r.Raw(key)
	if !ok {
		return 0, false
	}
	return toInt(v)
}

func (r Record) LookupFloat(key string) (float64, bool) {
	v, ok := r.Raw(key)
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

func (r Record) LookupBool(key string) (bool, bool) {
	v, ok := r.Raw(key)
	if !ok {
		return false, false
	}
	return toBool(v)
}

func (r Record) LookupString(key string) (string, bool) {
	v, ok := r.Raw(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (r Record) LookupDate(key string) (time.Time, bool) {
	s, ok := r.LookupString(key)
	if !ok {
		return NoDate, false
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return NoDate, false
	}
	return t, true
}

func (r Record) LookupUUID(key string) (uuid.UUID, bool) {
	v, ok := r.Raw(key)
	if !ok {
		return uuid.Nil, false
	}
	return toUUID(v)
}

func (r Record) LookupURL(key string) (*url.URL, bool) {
	v, ok := r.Raw(key)
	if !ok {
		return nil, false
	}
	return toURL(v)
}

func (r Record) LookupObject(key string) (Record, bool) {
	v, ok := r.Raw(key)
	if !ok {
		return Record{}, false
	}
	nested, ok := v.(Record)
	if !ok || nested.fields == nil {
		return Record{}, false
	}
	return nested, true
}

func (r Record) LookupArray(key string) ([]any, bool) {
	v, ok := r.Raw(key)
	if !ok {
		return nil, false
	}
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]any, len(items))
	copy(out, items)
	return out, true
}

// ── Value conversion ───────────────────────────────────────
// Shared by the field accessors and the element extractors.

// decimalInt matches base-10 integers, optionally written with a zero
// fractional part ("3.0"). Prefixed and underscored forms are rejected.
var decimalInt = regexp.MustCompile(`^([+-]?[0-9]+)(?:\.0*)?$`)

func toInt(v any) (int, bool) {
	var s string
	switch n := v.(type) {
	case json.Number:
		s = string(n)
	case string:
		s = n
	default:
		return 0, false
	}
	m := decimalInt.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || n < math.MinInt || n > math.MaxInt {
		return 0, false
	}
	return int(n), true
}

func toFloat(v any) (float64, bool) {
	switch v.(type) {
	case json.Number, string:
	default:
		return 0, false
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		switch {
		case strings.EqualFold(b, "true"):
			return true, true
		case strings.EqualFold(b, "false"):
			return false, true
		}
	}
	return false, false
}

func toUUID(v any) (uuid.UUID, bool) {
	s, ok := v.(string)
	// uuid.Parse also takes urn: and braced forms; only the 36-char form is canonical.
	if !ok || len(s) != 36 {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func toURL(v any) (*url.URL, bool) {
	s, ok := v.(string)
	if !ok {
		return nil, false
	}
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return nil, false
	}
	return u, true
}
