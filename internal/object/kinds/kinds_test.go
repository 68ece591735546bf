package kinds_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scryfall/internal/object"
	"scryfall/internal/object/kinds"
	"scryfall/internal/record"
)

func fixture(t *testing.T, name string) record.Record {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	rec, err := record.Parse(data)
	require.NoError(t, err)
	return rec
}

func TestCard_Decode(t *testing.T) {
	rec := fixture(t, "card.json")

	c, err := object.DecodeAs[*kinds.Card](rec)
	require.NoError(t, err)

	assert.Equal(t, uuid.MustParse("8bc6ba5d-2de1-4f8e-8a48-6a2c5c3f6c7b"), c.ID)
	assert.Equal(t, "Llanowar Elves", c.Name)
	assert.Equal(t, kinds.LayoutNormal, c.Layout)
	assert.Equal(t, 1.0, c.CMC)
	assert.Equal(t, []kinds.Color{kinds.Green}, c.Colors)
	assert.Equal(t, []int{522280}, c.MultiverseIDs)
	assert.Equal(t, 73350, c.ArenaID)
	assert.Equal(t, []kinds.Game{kinds.Arena, kinds.Paper, kinds.MTGO}, c.Games)
	assert.Equal(t, kinds.Common, c.Rarity)
	assert.Equal(t, kinds.Frame2015, c.Frame)
	assert.Equal(t, []kinds.FrameEffect{kinds.EffectExtendedArt}, c.FrameEffects)
	assert.Equal(t, time.Date(2021, time.February, 5, 0, 0, 0, 0, time.UTC), c.ReleasedAt)
	assert.True(t, c.Foil)
	assert.True(t, c.Reprint)
	assert.Empty(t, c.Keywords)
	assert.NotNil(t, c.Keywords)
	assert.Equal(t, rec, c.Record())
}

func TestCard_NestedDefaults(t *testing.T) {
	c := kinds.NewCard(fixture(t, "card.json"))

	assert.Equal(t, "0.25", c.Prices.USD)
	assert.Equal(t, "", c.Prices.EUR, "null price")
	assert.Equal(t, "", c.Prices.USDEtched, "absent price")

	require.NotNil(t, c.ImageURIs.Normal)
	assert.Equal(t, "cards.scryfall.io", c.ImageURIs.Normal.Host)
	assert.Nil(t, c.ImageURIs.ArtCrop)

	assert.Equal(t, 87474, c.MTGOID)
	assert.Equal(t, 16, c.EDHRECRank)
	assert.Empty(t, c.Faces)
	assert.Empty(t, c.AllParts)
	assert.Empty(t, c.ColorIndicator)
}

func TestCard_OrderedMaps(t *testing.T) {
	c := kinds.NewCard(fixture(t, "card.json"))

	var formats []string
	for pair := c.Legalities.Oldest(); pair != nil; pair = pair.Next() {
		formats = append(formats, pair.Key)
	}
	assert.Equal(t, []string{"standard", "pioneer", "modern", "legacy", "vintage", "commander", "oldschool"}, formats)
	assert.Equal(t, kinds.NotLegal, c.LegalIn("standard"))
	assert.Equal(t, kinds.Legal, c.LegalIn("modern"))
	assert.Equal(t, kinds.Legality(""), c.LegalIn("brawl"))
	assert.True(t, c.LegalIn("vintage").Playable())

	tcg, ok := c.PurchaseURIs.Get("tcgplayer")
	require.True(t, ok)
	assert.Equal(t, "www.tcgplayer.com", tcg.Host)
	bad, ok := c.PurchaseURIs.Get("cardmarket")
	require.True(t, ok)
	assert.Nil(t, bad)
	assert.Equal(t, 2, c.RelatedURIs.Len())
}

func TestCard_TypeLine(t *testing.T) {
	c := kinds.NewCard(fixture(t, "card.json"))
	assert.Equal(t, []string{"Creature"}, c.Types())
	assert.Empty(t, c.Supertypes())
	assert.Equal(t, []string{"Elf", "Druid"}, c.Subtypes())

	dfc := kinds.NewCard(fixture(t, "transform.json"))
	assert.Equal(t, []string{"Human", "Wizard"}, dfc.Subtypes())

	land := kinds.NewCard(record.FromMap(map[string]any{"object": "card", "type_line": "Legendary Snow Land"}))
	assert.Equal(t, []string{"Legendary", "Snow"}, land.Supertypes())
	assert.Equal(t, []string{"Land"}, land.Types())
	assert.Empty(t, land.Subtypes())
}

func TestCard_Faces(t *testing.T) {
	c, err := object.DecodeAs[*kinds.Card](fixture(t, "transform.json"))
	require.NoError(t, err)

	assert.True(t, c.Layout.MultiFaced())
	require.Len(t, c.Faces, 2)
	assert.Equal(t, "Delver of Secrets", c.Faces[0].Name)
	assert.Equal(t, "Insectile Aberration", c.Faces[1].Name)
	assert.Equal(t, []kinds.Color{kinds.Blue}, c.Faces[1].ColorIndicator)
	assert.NotNil(t, c.Faces[0].ImageURIs.Normal)
	assert.Nil(t, c.Faces[1].ImageURIs.Normal)
	assert.Equal(t, kinds.KindCardFace, c.Faces[0].Kind())

	require.Len(t, c.AllParts, 1)
	assert.Equal(t, kinds.ComponentComboPiece, c.AllParts[0].Component)
	assert.NotNil(t, c.AllParts[0].URI)

	assert.Equal(t, 1.0, c.CMC)
	assert.Equal(t, time.Time{}, c.ReleasedAt, "malformed date")
	assert.Equal(t, -1.0, kinds.NewCard(record.Empty()).CMC)
}

func TestCard_Empty(t *testing.T) {
	c := kinds.NewCard(record.MustParse(`{"object":"card"}`))

	assert.Equal(t, uuid.Nil, c.ID)
	assert.Equal(t, "", c.Name)
	assert.Equal(t, -1, c.ArenaID)
	assert.Nil(t, c.URI)
	assert.Equal(t, 0, c.Legalities.Len())
	assert.Equal(t, 0, c.PurchaseURIs.Len())
	assert.False(t, c.Layout.Known())
}

func TestSets_Page(t *testing.T) {
	ctx := context.Background()
	c, err := object.CollectionFrom(fixture(t, "sets_page.json"), nil)
	require.NoError(t, err)

	sets, err := object.AllOf[*kinds.Set](ctx, c)
	require.NoError(t, err)
	require.Len(t, sets, 3)

	khm := sets[0]
	assert.Equal(t, "khm", khm.Code)
	assert.Equal(t, kinds.SetExpansion, khm.SetType)
	assert.Equal(t, 444, khm.CardCount)
	assert.Equal(t, 2750, khm.TCGPlayerID)
	assert.NotNil(t, khm.IconSVGURI)

	alchemy := sets[1]
	assert.Equal(t, -1, alchemy.CardCount, "non-numeric count")
	assert.True(t, alchemy.Digital)
	assert.Equal(t, uuid.Nil, alchemy.ID)

	future := sets[2]
	assert.Equal(t, kinds.SetType("hyperspace"), future.SetType)
	assert.False(t, future.SetType.Known())
}

func TestSymbols_Page(t *testing.T) {
	ctx := context.Background()
	c, err := object.CollectionFrom(fixture(t, "symbology.json"), nil)
	require.NoError(t, err)

	syms, err := object.AllOf[*kinds.CardSymbol](ctx, c)
	require.NoError(t, err)
	require.Len(t, syms, 3)

	assert.Equal(t, "{T}", syms[0].Symbol)
	assert.Equal(t, "", syms[0].LooseVariant)
	assert.Equal(t, []string{"ocT", "oT"}, syms[0].GathererAlternates)
	assert.Equal(t, []kinds.Color{kinds.White, kinds.Blue}, syms[1].Colors)
	assert.True(t, syms[1].RepresentsMana)
	assert.Equal(t, 0.5, syms[2].CMC)
	assert.Nil(t, syms[2].SVGURI)
}

func TestMixedPage_FilteredByKind(t *testing.T) {
	ctx := context.Background()
	page := record.MustParse(`{"object":"list","has_more":false,"data":[
		{"object":"card","name":"A"},
		{"object":"set","code":"s1"},
		{"object":"ruling","source":"wotc","published_at":"2004-10-04","comment":"c"},
		{"object":"card","name":"B"},
		{"object":"emblem"}
	]}`)

	c, err := object.CollectionFrom(page, nil)
	require.NoError(t, err)
	cards, err := object.AllOf[*kinds.Card](ctx, c)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "A", cards[0].Name)
	assert.Equal(t, "B", cards[1].Name)

	c, err = object.CollectionFrom(page, nil)
	require.NoError(t, err)
	all, err := c.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 5)
	r := all[2].(*kinds.Ruling)
	assert.Equal(t, kinds.SourceWotC, r.Source)
	assert.Equal(t, time.Date(2004, time.October, 4, 0, 0, 0, 0, time.UTC), r.PublishedAt)
	assert.IsType(t, &object.Unknown{}, all[4])
}

func TestCatalogAndBulk(t *testing.T) {
	cat, err := object.DecodeAs[*kinds.Catalog](record.MustParse(
		`{"object":"catalog","uri":"https://api.scryfall.com/catalog/powers","total_values":3,"data":["*","1","1+*"]}`))
	require.NoError(t, err)
	assert.Equal(t, 3, cat.TotalValues)
	assert.Equal(t, []string{"*", "1", "1+*"}, cat.Data)

	bulk, err := object.DecodeAs[*kinds.BulkData](record.MustParse(`{
		"object":"bulk_data","type":"oracle_cards","name":"Oracle Cards",
		"updated_at":"2024-05-01T09:10:11.123+00:00","size":160111222,
		"download_uri":"https://data.scryfall.io/oracle-cards/oracle-cards.json",
		"content_type":"application/json","content_encoding":"gzip"}`))
	require.NoError(t, err)
	assert.Equal(t, "oracle_cards", bulk.Type)
	assert.Equal(t, 2024, bulk.UpdatedAt.Year())
	assert.Equal(t, 160111222, bulk.Size)
	assert.NotNil(t, bulk.DownloadURI)

	stale := kinds.NewBulkData(record.MustParse(`{"object":"bulk_data","updated_at":"yesterday"}`))
	assert.True(t, stale.UpdatedAt.IsZero())
}

func TestMigration(t *testing.T) {
	m, err := object.DecodeAs[*kinds.Migration](record.MustParse(`{
		"object":"card_migration","id":"0b5f7c6a-33a1-4a4b-a8c1-a1c1fca2b5bd",
		"performed_at":"2023-07-13","migration_strategy":"delete",
		"old_scryfall_id":"8bc6ba5d-2de1-4f8e-8a48-6a2c5c3f6c7b","new_scryfall_id":null,
		"note":"duplicate"}`))
	require.NoError(t, err)
	assert.Equal(t, kinds.MigrationDelete, m.Strategy)
	assert.True(t, m.Strategy.Known())
	assert.Equal(t, uuid.Nil, m.NewScryfallID)
	assert.NotEqual(t, uuid.Nil, m.OldScryfallID)
}

func TestColors(t *testing.T) {
	assert.Equal(t, []kinds.Color{kinds.White, kinds.Blue, kinds.Green}, kinds.ParseColors("WUxG"))
	assert.Empty(t, kinds.ParseColors(""))
	assert.Equal(t, "black", kinds.Black.Name())
	assert.Equal(t, "C", kinds.Color("C").Name())
	assert.False(t, kinds.Color("C").Known())
}

func TestRegisteredKinds(t *testing.T) {
	registered := object.Kinds()
	for _, k := range []object.Kind{
		kinds.KindCard, kinds.KindCardFace, kinds.KindRelatedCard, kinds.KindSet,
		kinds.KindRuling, kinds.KindCardSymbol, kinds.KindManaCost, kinds.KindBulkData,
		kinds.KindCatalog, kinds.KindMigration, object.KindList,
	} {
		assert.Contains(t, registered, k)
	}
}
