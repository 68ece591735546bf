package kinds

import (
	"net/url"

	"scryfall/internal/object"
	"scryfall/internal/record"
)

const (
	KindCardSymbol object.Kind = "card_symbol"
	KindManaCost   object.Kind = "mana_cost"
)

func init() {
	object.RegisterKind(KindCardSymbol, func(rec record.Record) object.Object { return NewCardSymbol(rec) })
	object.RegisterKind(KindManaCost, func(rec record.Record) object.Object { return NewManaCost(rec) })
}

// CardSymbol is one symbol that can appear in card text, such as {T}.
type CardSymbol struct {
	base

	Symbol             string
	LooseVariant       string
	English            string
	Transposable       bool
	RepresentsMana     bool
	AppearsInManaCosts bool
	Funny              bool
	CMC                float64
	Colors             []Color
	GathererAlternates []string
	SVGURI             *url.URL
}

func NewCardSymbol(rec record.Record) *CardSymbol {
	return &CardSymbol{
		base:               base{rec: rec},
		Symbol:             rec.String("symbol"),
		LooseVariant:       rec.String("loose_variant"),
		English:            rec.String("english"),
		Transposable:       rec.Bool("transposable"),
		RepresentsMana:     rec.Bool("represents_mana"),
		AppearsInManaCosts: rec.Bool("appears_in_mana_costs"),
		Funny:              rec.Bool("funny"),
		CMC:                rec.Float("cmc"),
		Colors:             colorsAt(rec, "colors"),
		GathererAlternates: record.Strings(rec, "gatherer_alternates"),
		SVGURI:             rec.URL("svg_uri"),
	}
}

func (s *CardSymbol) Kind() object.Kind { return KindCardSymbol }

// ManaCost is the parsed form of a mana cost string.
type ManaCost struct {
	base

	Cost         string
	CMC          float64
	Colors       []Color
	Colorless    bool
	Monocolored  bool
	Multicolored bool
}

func NewManaCost(rec record.Record) *ManaCost {
	return &ManaCost{
		base:         base{rec: rec},
		Cost:         rec.String("cost"),
		CMC:          rec.Float("cmc"),
		Colors:       colorsAt(rec, "colors"),
		Colorless:    rec.Bool("colorless"),
		Monocolored:  rec.Bool("monocolored"),
		Multicolored: rec.Bool("multicolored"),
	}
}

func (m *ManaCost) Kind() object.Kind { return KindManaCost }
