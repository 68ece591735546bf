package sources

import (
	"context"

	"github.com/samber/lo"

	"scryfall/internal/client"
	"scryfall/internal/etl"
	"scryfall/internal/object"
	"scryfall/internal/object/kinds"
)

func init() {
	etl.RegisterSource(&SetsSource{})
}

// SetsSource exports every set, optionally narrowed to some set types.
type SetsSource struct{}

type SetsConfig struct {
	SetTypes       []string `mapstructure:"set_types"`
	IncludeDigital bool     `mapstructure:"include_digital"`
}

func (s *SetsSource) Spec() etl.SourceSpec {
	return etl.SourceSpec{
		Type:  "sets",
		Label: "Sets",
		ConfigFields: []etl.ConfigField{
			{Key: "set_types", Label: "Set types", Type: "string", Help: "Comma separated, e.g. core,expansion; empty for all"},
			{Key: "include_digital", Label: "Include digital sets", Type: "bool"},
		},
	}
}

func (s *SetsSource) Discover(cfg etl.SourceConfig) (*etl.Schema, error) {
	var c SetsConfig
	if err := etl.DecodeConfig(cfg, &c); err != nil {
		return nil, err
	}
	return &etl.Schema{Fields: []etl.Field{
		{Name: "id", Type: etl.TypeText},
		{Name: "code", Type: etl.TypeText},
		{Name: "name", Type: etl.TypeText},
		{Name: "set_type", Type: etl.TypeText},
		{Name: "released_at", Type: etl.TypeDatetime},
		{Name: "block", Type: etl.TypeText},
		{Name: "parent_set_code", Type: etl.TypeText},
		{Name: "card_count", Type: etl.TypeNumber},
		{Name: "digital", Type: etl.TypeBoolean},
		{Name: "foil_only", Type: etl.TypeBoolean},
		{Name: "icon_svg_uri", Type: etl.TypeText},
	}}, nil
}

func (s *SetsSource) Read(ctx context.Context, cl *client.Client, cfg etl.SourceConfig) (*object.Collection, etl.RowMapper, error) {
	var c SetsConfig
	if err := etl.DecodeConfig(cfg, &c); err != nil {
		return nil, nil, err
	}
	col, err := cl.Sets(ctx)
	return col, c.toRow, err
}

func (c SetsConfig) toRow(obj object.Object) (etl.Row, bool) {
	set, ok := obj.(*kinds.Set)
	if !ok {
		return etl.Row{}, false
	}
	if set.Digital && !c.IncludeDigital {
		return etl.Row{}, false
	}
	if len(c.SetTypes) > 0 && !lo.Contains(c.SetTypes, string(set.SetType)) {
		return etl.Row{}, false
	}
	return etl.Row{Data: map[string]any{
		"id":              uuidText(set.ID),
		"code":            set.Code,
		"name":            set.Name,
		"set_type":        etl.Text(string(set.SetType)),
		"released_at":     etl.Date(set.ReleasedAt),
		"block":           etl.Text(set.Block),
		"parent_set_code": etl.Text(set.ParentSetCode),
		"card_count":      count(set.CardCount),
		"digital":         set.Digital,
		"foil_only":       set.FoilOnly,
		"icon_svg_uri":    urlText(set.IconSVGURI),
	}}, true
}
