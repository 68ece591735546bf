package sources

import (
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/spf13/cast"

	"scryfall/internal/object/kinds"
)

// Value helpers shared by the sources. Absent values map to nil so sinks
// store NULL rather than a sentinel.

func colorsText(cs []kinds.Color) any {
	if len(cs) == 0 {
		return nil
	}
	return strings.Join(lo.Map(cs, func(c kinds.Color, _ int) string { return string(c) }), "")
}

func joined(ss []string) any {
	if len(ss) == 0 {
		return nil
	}
	return strings.Join(ss, ", ")
}

// price parses a decimal price string; the API sends prices as strings.
func price(s string) any {
	if s == "" {
		return nil
	}
	f, err := cast.ToFloat64E(s)
	if err != nil {
		return nil
	}
	return f
}

func urlText(u *url.URL) any {
	if u == nil {
		return nil
	}
	return u.String()
}

func uuidText(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id.String()
}

// count maps the -1 integer default to nil.
func count(n int) any {
	if n < 0 {
		return nil
	}
	return n
}
