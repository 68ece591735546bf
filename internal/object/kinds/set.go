package kinds

import (
	"net/url"
	"time"

	"github.com/google/uuid"

	"scryfall/internal/object"
	"scryfall/internal/record"
)

const KindSet object.Kind = "set"

func init() {
	object.RegisterKind(KindSet, func(rec record.Record) object.Object { return NewSet(rec) })
}

// Set is a group of related cards released together.
type Set struct {
	base

	ID            uuid.UUID
	Code          string
	MTGOCode      string
	ArenaCode     string
	TCGPlayerID   int
	Name          string
	SetType       SetType
	ReleasedAt    time.Time
	BlockCode     string
	Block         string
	ParentSetCode string
	CardCount     int
	PrintedSize   int
	Digital       bool
	FoilOnly      bool
	NonfoilOnly   bool

	URI         *url.URL
	ScryfallURI *url.URL
	SearchURI   *url.URL
	IconSVGURI  *url.URL
}

func NewSet(rec record.Record) *Set {
	return &Set{
		base:          base{rec: rec},
		ID:            rec.UUID("id"),
		Code:          rec.String("code"),
		MTGOCode:      rec.String("mtgo_code"),
		ArenaCode:     rec.String("arena_code"),
		TCGPlayerID:   rec.Int("tcgplayer_id"),
		Name:          rec.String("name"),
		SetType:       SetType(rec.String("set_type")),
		ReleasedAt:    rec.Date("released_at"),
		BlockCode:     rec.String("block_code"),
		Block:         rec.String("block"),
		ParentSetCode: rec.String("parent_set_code"),
		CardCount:     rec.Int("card_count"),
		PrintedSize:   rec.Int("printed_size"),
		Digital:       rec.Bool("digital"),
		FoilOnly:      rec.Bool("foil_only"),
		NonfoilOnly:   rec.Bool("nonfoil_only"),
		URI:           rec.URL("uri"),
		ScryfallURI:   rec.URL("scryfall_uri"),
		SearchURI:     rec.URL("search_uri"),
		IconSVGURI:    rec.URL("icon_svg_uri"),
	}
}

func (s *Set) Kind() object.Kind { return KindSet }
