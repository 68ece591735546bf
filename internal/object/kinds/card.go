package kinds

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"scryfall/internal/object"
	"scryfall/internal/record"
)

const (
	KindCard        object.Kind = "card"
	KindCardFace    object.Kind = "card_face"
	KindRelatedCard object.Kind = "related_card"
)

func init() {
	object.RegisterKind(KindCard, func(rec record.Record) object.Object { return NewCard(rec) })
	object.RegisterKind(KindCardFace, func(rec record.Record) object.Object { return NewCardFace(rec) })
	object.RegisterKind(KindRelatedCard, func(rec record.Record) object.Object { return NewRelatedCard(rec) })
}

// base carries the source record of every variant in this package.
type base struct {
	rec record.Record
}

func (b base) Record() record.Record { return b.rec }

func colorsAt(rec record.Record, key string) []Color {
	return record.List(rec, key, record.AsString, func(s string) Color { return Color(s) })
}

// ── Card ───────────────────────────────────────────────────

// Card is one printing of a Magic card.
type Card struct {
	base

	ID             uuid.UUID
	OracleID       uuid.UUID
	IllustrationID uuid.UUID
	ArenaID        int
	MTGOID         int
	TCGPlayerID    int
	EDHRECRank     int
	MultiverseIDs  []int

	Name       string
	Lang       string
	Layout     Layout
	ManaCost   string
	CMC        float64
	TypeLine   string
	OracleText string
	Power      string
	Toughness  string
	Loyalty    string
	Keywords   []string

	Colors         []Color
	ColorIdentity  []Color
	ColorIndicator []Color
	Legalities     *orderedmap.OrderedMap[string, Legality]
	Games          []Game
	Reserved       bool

	Set             string
	SetName         string
	SetType         SetType
	CollectorNumber string
	Rarity          Rarity
	Artist          string
	FlavorText      string
	BorderColor     BorderColor
	Frame           Frame
	FrameEffects    []FrameEffect
	ReleasedAt      time.Time
	Foil            bool
	Nonfoil         bool
	Digital         bool
	Promo           bool
	Reprint         bool
	FullArt         bool
	Textless        bool

	Prices    Prices
	ImageURIs ImageURIs
	Faces     []*CardFace
	AllParts  []*RelatedCard

	URI             *url.URL
	ScryfallURI     *url.URL
	RulingsURI      *url.URL
	PrintsSearchURI *url.URL
	PurchaseURIs    *orderedmap.OrderedMap[string, *url.URL]
	RelatedURIs     *orderedmap.OrderedMap[string, *url.URL]
}

func NewCard(rec record.Record) *Card {
	return &Card{
		base: base{rec: rec},

		ID:             rec.UUID("id"),
		OracleID:       rec.UUID("oracle_id"),
		IllustrationID: rec.UUID("illustration_id"),
		ArenaID:        rec.Int("arena_id"),
		MTGOID:         rec.Int("mtgo_id"),
		TCGPlayerID:    rec.Int("tcgplayer_id"),
		EDHRECRank:     rec.Int("edhrec_rank"),
		MultiverseIDs:  record.List(rec, "multiverse_ids", record.AsInt, func(n int) int { return n }),

		Name:       rec.String("name"),
		Lang:       rec.String("lang"),
		Layout:     Layout(rec.String("layout")),
		ManaCost:   rec.String("mana_cost"),
		CMC:        rec.Float("cmc"),
		TypeLine:   rec.String("type_line"),
		OracleText: rec.String("oracle_text"),
		Power:      rec.String("power"),
		Toughness:  rec.String("toughness"),
		Loyalty:    rec.String("loyalty"),
		Keywords:   record.Strings(rec, "keywords"),

		Colors:         colorsAt(rec, "colors"),
		ColorIdentity:  colorsAt(rec, "color_identity"),
		ColorIndicator: colorsAt(rec, "color_indicator"),
		Legalities:     record.Map(rec, "legalities", record.AsString, func(s string) Legality { return Legality(s) }),
		Games:          record.List(rec, "games", record.AsString, func(s string) Game { return Game(s) }),
		Reserved:       rec.Bool("reserved"),

		Set:             rec.String("set"),
		SetName:         rec.String("set_name"),
		SetType:         SetType(rec.String("set_type")),
		CollectorNumber: rec.String("collector_number"),
		Rarity:          Rarity(rec.String("rarity")),
		Artist:          rec.String("artist"),
		FlavorText:      rec.String("flavor_text"),
		BorderColor:     BorderColor(rec.String("border_color")),
		Frame:           Frame(rec.String("frame")),
		FrameEffects:    record.List(rec, "frame_effects", record.AsString, func(s string) FrameEffect { return FrameEffect(s) }),
		ReleasedAt:      rec.Date("released_at"),
		Foil:            rec.Bool("foil"),
		Nonfoil:         rec.Bool("nonfoil"),
		Digital:         rec.Bool("digital"),
		Promo:           rec.Bool("promo"),
		Reprint:         rec.Bool("reprint"),
		FullArt:         rec.Bool("full_art"),
		Textless:        rec.Bool("textless"),

		Prices:    newPrices(rec.Object("prices")),
		ImageURIs: newImageURIs(rec.Object("image_uris")),
		Faces:     record.List(rec, "card_faces", record.AsRecord, NewCardFace),
		AllParts:  record.List(rec, "all_parts", record.AsRecord, NewRelatedCard),

		URI:             rec.URL("uri"),
		ScryfallURI:     rec.URL("scryfall_uri"),
		RulingsURI:      rec.URL("rulings_uri"),
		PrintsSearchURI: rec.URL("prints_search_uri"),
		PurchaseURIs:    record.Map(rec, "purchase_uris", record.AsURL, identity[*url.URL]),
		RelatedURIs:     record.Map(rec, "related_uris", record.AsURL, identity[*url.URL]),
	}
}

func (c *Card) Kind() object.Kind { return KindCard }

// LegalIn returns the card's legality in format, "" if not listed.
func (c *Card) LegalIn(format string) Legality {
	l, _ := c.Legalities.Get(format)
	return l
}

// Types returns the card types named on the type line, e.g. Creature.
func (c *Card) Types() []string { return typeLineWords(c.TypeLine, cardTypes) }

// Supertypes returns Legendary, Basic, Snow or World when present.
func (c *Card) Supertypes() []string { return typeLineWords(c.TypeLine, superTypes) }

// Subtypes returns the words after the dash of the front face type line.
func (c *Card) Subtypes() []string { return subtypes(c.TypeLine) }

var (
	superTypes = []string{"Basic", "Legendary", "Ongoing", "Snow", "World"}
	cardTypes  = []string{
		"Artifact", "Battle", "Creature", "Enchantment", "Instant", "Land",
		"Planeswalker", "Sorcery", "Tribal", "Kindred",
	}
)

func frontFace(typeLine string) string {
	front, _, _ := strings.Cut(typeLine, "//")
	return strings.TrimSpace(front)
}

func typeLineWords(typeLine string, vocab []string) []string {
	head, _, _ := strings.Cut(frontFace(typeLine), "—")
	out := []string{}
	for _, w := range strings.Fields(head) {
		for _, v := range vocab {
			if w == v {
				out = append(out, w)
			}
		}
	}
	return out
}

func subtypes(typeLine string) []string {
	_, tail, ok := strings.Cut(frontFace(typeLine), "—")
	if !ok {
		return []string{}
	}
	return strings.Fields(tail)
}

func identity[T any](v T) T { return v }

// ── Card parts ─────────────────────────────────────────────

// Prices are decimal strings as sent by the API; "" when unpriced.
type Prices struct {
	USD       string
	USDFoil   string
	USDEtched string
	EUR       string
	EURFoil   string
	TIX       string
}

func newPrices(rec record.Record) Prices {
	return Prices{
		USD:       rec.String("usd"),
		USDFoil:   rec.String("usd_foil"),
		USDEtched: rec.String("usd_etched"),
		EUR:       rec.String("eur"),
		EURFoil:   rec.String("eur_foil"),
		TIX:       rec.String("tix"),
	}
}

// ImageURIs point at the rendered card images; nil when absent.
type ImageURIs struct {
	Small      *url.URL
	Normal     *url.URL
	Large      *url.URL
	PNG        *url.URL
	ArtCrop    *url.URL
	BorderCrop *url.URL
}

func newImageURIs(rec record.Record) ImageURIs {
	return ImageURIs{
		Small:      rec.URL("small"),
		Normal:     rec.URL("normal"),
		Large:      rec.URL("large"),
		PNG:        rec.URL("png"),
		ArtCrop:    rec.URL("art_crop"),
		BorderCrop: rec.URL("border_crop"),
	}
}

// CardFace is one face of a multi-faced card.
type CardFace struct {
	base

	Name           string
	ManaCost       string
	TypeLine       string
	OracleText     string
	Power          string
	Toughness      string
	Loyalty        string
	Artist         string
	FlavorText     string
	IllustrationID uuid.UUID
	Colors         []Color
	ColorIndicator []Color
	ImageURIs      ImageURIs
}

func NewCardFace(rec record.Record) *CardFace {
	return &CardFace{
		base:           base{rec: rec},
		Name:           rec.String("name"),
		ManaCost:       rec.String("mana_cost"),
		TypeLine:       rec.String("type_line"),
		OracleText:     rec.String("oracle_text"),
		Power:          rec.String("power"),
		Toughness:      rec.String("toughness"),
		Loyalty:        rec.String("loyalty"),
		Artist:         rec.String("artist"),
		FlavorText:     rec.String("flavor_text"),
		IllustrationID: rec.UUID("illustration_id"),
		Colors:         colorsAt(rec, "colors"),
		ColorIndicator: colorsAt(rec, "color_indicator"),
		ImageURIs:      newImageURIs(rec.Object("image_uris")),
	}
}

func (f *CardFace) Kind() object.Kind { return KindCardFace }

// RelatedCard links a card to a token, meld piece or combo piece.
type RelatedCard struct {
	base

	ID        uuid.UUID
	Component Component
	Name      string
	TypeLine  string
	URI       *url.URL
}

func NewRelatedCard(rec record.Record) *RelatedCard {
	return &RelatedCard{
		base:      base{rec: rec},
		ID:        rec.UUID("id"),
		Component: Component(rec.String("component")),
		Name:      rec.String("name"),
		TypeLine:  rec.String("type_line"),
		URI:       rec.URL("uri"),
	}
}

func (r *RelatedCard) Kind() object.Kind { return KindRelatedCard }
