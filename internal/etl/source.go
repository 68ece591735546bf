package etl

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/mitchellh/mapstructure"

	"scryfall/internal/client"
	"scryfall/internal/object"
)

// ── Source ──────────────────────────────────────────────────
// A Source turns one API listing into rows. Implementations live in
// etl/sources/, one file per source type.
//
// Pattern: Airbyte connector protocol (describe → discover → read).

// SourceConfig is an opaque configuration map decoded per source type.
type SourceConfig map[string]any

// ConfigField describes a single configuration input for a source.
type ConfigField struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Type     string   `json:"type"` // "string" | "select" | "bool"
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
	Default  string   `json:"default,omitempty"`
	Help     string   `json:"help,omitempty"`
}

// SourceSpec describes a source type and its config fields.
type SourceSpec struct {
	Type         string        `json:"type"`
	Label        string        `json:"label"`
	ConfigFields []ConfigField `json:"configFields"`
}

// Source is the interface every export source implements.
type Source interface {
	// Spec returns metadata about this source type.
	Spec() SourceSpec

	// Discover validates cfg and returns the schema of the emitted rows.
	Discover(cfg SourceConfig) (*Schema, error)

	// Read opens the first page of the listing described by cfg and
	// returns the mapper for its objects.
	Read(ctx context.Context, c *client.Client, cfg SourceConfig) (*object.Collection, RowMapper, error)
}

// RowMapper maps one listed object to a row. ok is false for objects the
// source does not export.
type RowMapper func(obj object.Object) (row Row, ok bool)

// DecodeConfig decodes cfg into the struct pointed to by out. Unknown
// keys are rejected. Scalar strings are coerced to the field type, and
// comma separated strings fill slice fields.
func DecodeConfig(cfg SourceConfig, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(map[string]any(cfg)); err != nil {
		return fmt.Errorf("source config: %w", err)
	}
	return nil
}

// ── Source Registry ────────────────────────────────────────
// Compile-time registration via init() in each source file.

var (
	registryMu sync.RWMutex
	registry   = map[string]Source{}
)

// RegisterSource registers a source by its spec type.
func RegisterSource(s Source) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[s.Spec().Type] = s
}

// GetSource returns a registered source by type, or an error if not found.
func GetSource(typ string) (Source, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	s, ok := registry[typ]
	if !ok {
		return nil, fmt.Errorf("unknown source type: %q", typ)
	}
	return s, nil
}

// ListSources returns the specs of all registered sources, by type.
func ListSources() []SourceSpec {
	registryMu.RLock()
	defer registryMu.RUnlock()
	specs := make([]SourceSpec, 0, len(registry))
	for _, s := range registry {
		specs = append(specs, s.Spec())
	}
	slices.SortFunc(specs, func(a, b SourceSpec) int { return strings.Compare(a.Type, b.Type) })
	return specs
}
