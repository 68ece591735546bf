package sources

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"scryfall/internal/client"
	"scryfall/internal/etl"
	"scryfall/internal/object"
	"scryfall/internal/object/kinds"
	"scryfall/internal/record"
)

func init() {
	etl.RegisterSource(&SearchSource{})
}

// SearchSource exports the cards matching a search query, one row per
// card, with a legal_<format> column for each of the main formats.
type SearchSource struct{}

var legalityFormats = []string{"standard", "pioneer", "modern", "legacy", "vintage", "commander", "pauper"}

type SearchConfig struct {
	Query         string `mapstructure:"query"`
	Unique        string `mapstructure:"unique"`
	Order         string `mapstructure:"order"`
	Dir           string `mapstructure:"dir"`
	IncludeExtras bool   `mapstructure:"include_extras"`
}

var cardFields = []etl.Field{
	{Name: "id", Type: etl.TypeText},
	{Name: "oracle_id", Type: etl.TypeText},
	{Name: "name", Type: etl.TypeText},
	{Name: "set", Type: etl.TypeText},
	{Name: "collector_number", Type: etl.TypeText},
	{Name: "rarity", Type: etl.TypeText},
	{Name: "layout", Type: etl.TypeText},
	{Name: "mana_cost", Type: etl.TypeText},
	{Name: "cmc", Type: etl.TypeNumber},
	{Name: "type_line", Type: etl.TypeText},
	{Name: "colors", Type: etl.TypeText},
	{Name: "color_identity", Type: etl.TypeText},
	{Name: "power", Type: etl.TypeText},
	{Name: "toughness", Type: etl.TypeText},
	{Name: "artist", Type: etl.TypeText},
	{Name: "released_at", Type: etl.TypeDatetime},
	{Name: "usd", Type: etl.TypeNumber},
	{Name: "eur", Type: etl.TypeNumber},
	{Name: "edhrec_rank", Type: etl.TypeNumber},
	{Name: "reserved", Type: etl.TypeBoolean},
	{Name: "scryfall_uri", Type: etl.TypeText},
}

func (s *SearchSource) Spec() etl.SourceSpec {
	return etl.SourceSpec{
		Type:  "search",
		Label: "Card search",
		ConfigFields: []etl.ConfigField{
			{Key: "query", Label: "Query", Type: "string", Required: true, Help: "Full-text search, e.g. t:elf c:g"},
			{Key: "unique", Label: "Unique", Type: "select", Options: []string{"cards", "art", "prints"}, Default: "cards"},
			{Key: "order", Label: "Order", Type: "select", Options: []string{"name", "set", "released", "rarity", "cmc", "usd", "edhrec"}, Default: "name"},
			{Key: "dir", Label: "Direction", Type: "select", Options: []string{"auto", "asc", "desc"}, Default: "auto"},
			{Key: "include_extras", Label: "Include extras", Type: "bool"},
		},
	}
}

func (s *SearchSource) config(cfg etl.SourceConfig) (SearchConfig, error) {
	var c SearchConfig
	if err := etl.DecodeConfig(cfg, &c); err != nil {
		return c, err
	}
	if c.Query == "" {
		return c, fmt.Errorf("search: query is required")
	}
	return c, nil
}

func (s *SearchSource) Discover(cfg etl.SourceConfig) (*etl.Schema, error) {
	if _, err := s.config(cfg); err != nil {
		return nil, err
	}
	fields := append([]etl.Field(nil), cardFields...)
	for _, f := range legalityFormats {
		fields = append(fields, etl.Field{Name: "legal_" + f, Type: etl.TypeText})
	}
	return &etl.Schema{Fields: fields}, nil
}

func (s *SearchSource) Read(ctx context.Context, cl *client.Client, cfg etl.SourceConfig) (*object.Collection, etl.RowMapper, error) {
	c, err := s.config(cfg)
	if err != nil {
		return nil, nil, err
	}
	col, err := cl.Search(ctx, c.Query, client.SearchOptions{
		Unique:        c.Unique,
		Order:         c.Order,
		Dir:           c.Dir,
		IncludeExtras: c.IncludeExtras,
	})
	if object.IsNotFound(err) {
		// no matches: export an empty table rather than fail
		col, err = object.NewCollection(object.NewList(record.Empty()), nil), nil
	}
	return col, cardToRow, err
}

func cardToRow(obj object.Object) (etl.Row, bool) {
	card, ok := obj.(*kinds.Card)
	if !ok {
		return etl.Row{}, false
	}
	data := cardRow(card)
	for _, f := range legalityFormats {
		data["legal_"+f] = etl.Text(string(card.LegalIn(f)))
	}
	return etl.Row{Data: data}, true
}

func cardRow(c *kinds.Card) map[string]any {
	return map[string]any{
		"id":               uuidText(c.ID),
		"oracle_id":        uuidText(c.OracleID),
		"name":             c.Name,
		"set":              c.Set,
		"collector_number": etl.Text(c.CollectorNumber),
		"rarity":           etl.Text(string(c.Rarity)),
		"layout":           etl.Text(string(c.Layout)),
		"mana_cost":        etl.Text(c.ManaCost),
		"cmc":              lo.Ternary[any](c.CMC < 0, nil, c.CMC),
		"type_line":        etl.Text(c.TypeLine),
		"colors":           colorsText(c.Colors),
		"color_identity":   colorsText(c.ColorIdentity),
		"power":            etl.Text(c.Power),
		"toughness":        etl.Text(c.Toughness),
		"artist":           etl.Text(c.Artist),
		"released_at":      etl.Date(c.ReleasedAt),
		"usd":              price(c.Prices.USD),
		"eur":              price(c.Prices.EUR),
		"edhrec_rank":      count(c.EDHRECRank),
		"reserved":         c.Reserved,
		"scryfall_uri":     urlText(c.ScryfallURI),
	}
}
