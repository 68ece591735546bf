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
	etl.RegisterSource(&SymbolsSource{})
}

// SymbolsSource exports the card symbology table.
type SymbolsSource struct{}

func (s *SymbolsSource) Spec() etl.SourceSpec {
	return etl.SourceSpec{Type: "symbols", Label: "Card symbols"}
}

func (s *SymbolsSource) Discover(cfg etl.SourceConfig) (*etl.Schema, error) {
	if err := etl.DecodeConfig(cfg, &struct{}{}); err != nil {
		return nil, err
	}
	return &etl.Schema{Fields: []etl.Field{
		{Name: "symbol", Type: etl.TypeText},
		{Name: "english", Type: etl.TypeText},
		{Name: "cmc", Type: etl.TypeNumber},
		{Name: "colors", Type: etl.TypeText},
		{Name: "represents_mana", Type: etl.TypeBoolean},
		{Name: "appears_in_mana_costs", Type: etl.TypeBoolean},
		{Name: "funny", Type: etl.TypeBoolean},
		{Name: "gatherer_alternates", Type: etl.TypeText},
		{Name: "svg_uri", Type: etl.TypeText},
	}}, nil
}

func (s *SymbolsSource) Read(ctx context.Context, cl *client.Client, _ etl.SourceConfig) (*object.Collection, etl.RowMapper, error) {
	col, err := cl.Symbols(ctx)
	return col, symbolToRow, err
}

func symbolToRow(obj object.Object) (etl.Row, bool) {
	sym, ok := obj.(*kinds.CardSymbol)
	if !ok {
		return etl.Row{}, false
	}
	return etl.Row{Data: map[string]any{
		"symbol":                sym.Symbol,
		"english":               etl.Text(sym.English),
		"cmc":                   lo.Ternary[any](sym.CMC < 0, nil, sym.CMC),
		"colors":                colorsText(sym.Colors),
		"represents_mana":       sym.RepresentsMana,
		"appears_in_mana_costs": sym.AppearsInManaCosts,
		"funny":                 sym.Funny,
		"gatherer_alternates":   joined(sym.GathererAlternates),
		"svg_uri":               urlText(sym.SVGURI),
	}}, true
}
