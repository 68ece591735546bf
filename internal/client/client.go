package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"scryfall/internal/object"
	"scryfall/internal/object/kinds"
	"scryfall/internal/record"
)

// ── Client ─────────────────────────────────────────────────
// Thin query surface over a Fetcher. Every call resolves a path
// against the base URL and decodes the answer; error payloads come back
// as *object.Error.

type Client struct {
	fetcher object.Fetcher
	base    *url.URL
}

func New(f object.Fetcher, baseURL string) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	return &Client{fetcher: f, base: base}, nil
}

// Fetcher returns the fetcher the client pages through.
func (c *Client) Fetcher() object.Fetcher { return c.fetcher }

// Locator returns the absolute URL for path and query.
func (c *Client) Locator(path string, query url.Values) string {
	ref := &url.URL{Path: strings.TrimPrefix(path, "/")}
	if len(query) > 0 {
		ref.RawQuery = query.Encode()
	}
	return c.base.ResolveReference(ref).String()
}

// Get fetches path and decodes it without asserting a kind. Error
// payloads are returned as the object, not as err.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (object.Object, error) {
	rec, err := c.fetch(ctx, path, query)
	if err != nil {
		return nil, err
	}
	return object.Decode(rec), nil
}

func (c *Client) fetch(ctx context.Context, path string, query url.Values) (record.Record, error) {
	return c.fetcher.Fetch(ctx, c.Locator(path, query))
}

func (c *Client) list(ctx context.Context, path string, query url.Values) (*object.Collection, error) {
	rec, err := c.fetch(ctx, path, query)
	if err != nil {
		return nil, err
	}
	return object.CollectionFrom(rec, c.fetcher)
}

func one[T object.Object](ctx context.Context, c *Client, path string, query url.Values) (T, error) {
	rec, err := c.fetch(ctx, path, query)
	if err != nil {
		var zero T
		return zero, err
	}
	return object.DecodeAs[T](rec)
}

// ── Cards ──────────────────────────────────────────────────

type SearchOptions struct {
	Unique              string // cards | art | prints
	Order               string // name | set | released | cmc | usd | ...
	Dir                 string // auto | asc | desc
	IncludeExtras       bool
	IncludeMultilingual bool
	IncludeVariations   bool
	Page                int
}

func (o SearchOptions) values(q string) url.Values {
	v := url.Values{"q": {q}}
	if o.Unique != "" {
		v.Set("unique", o.Unique)
	}
	if o.Order != "" {
		v.Set("order", o.Order)
	}
	if o.Dir != "" {
		v.Set("dir", o.Dir)
	}
	if o.IncludeExtras {
		v.Set("include_extras", "true")
	}
	if o.IncludeMultilingual {
		v.Set("include_multilingual", "true")
	}
	if o.IncludeVariations {
		v.Set("include_variations", "true")
	}
	if o.Page > 1 {
		v.Set("page", strconv.Itoa(o.Page))
	}
	return v
}

// Search runs a full-text card search. A query that matches nothing is
// answered by the API with a not_found error.
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) (*object.Collection, error) {
	return c.list(ctx, "cards/search", opts.values(query))
}

func (c *Client) Card(ctx context.Context, id uuid.UUID) (*kinds.Card, error) {
	return one[*kinds.Card](ctx, c, "cards/"+id.String(), nil)
}

// Named looks a card up by exact name, or by the closest match when
// fuzzy is set. set optionally restricts the printing.
func (c *Client) Named(ctx context.Context, name string, fuzzy bool, set string) (*kinds.Card, error) {
	mode := "exact"
	if fuzzy {
		mode = "fuzzy"
	}
	q := url.Values{mode: {name}}
	if set != "" {
		q.Set("set", set)
	}
	return one[*kinds.Card](ctx, c, "cards/named", q)
}

// Random returns a random card, optionally restricted by a search query.
func (c *Client) Random(ctx context.Context, query string) (*kinds.Card, error) {
	var q url.Values
	if query != "" {
		q = url.Values{"q": {query}}
	}
	return one[*kinds.Card](ctx, c, "cards/random", q)
}

func (c *Client) CardBySet(ctx context.Context, set, number string) (*kinds.Card, error) {
	return one[*kinds.Card](ctx, c, "cards/"+set+"/"+number, nil)
}

func (c *Client) Rulings(ctx context.Context, id uuid.UUID) (*object.Collection, error) {
	return c.list(ctx, "cards/"+id.String()+"/rulings", nil)
}

func (c *Client) Autocomplete(ctx context.Context, partial string) (*kinds.Catalog, error) {
	return one[*kinds.Catalog](ctx, c, "cards/autocomplete", url.Values{"q": {partial}})
}

// ── Sets, symbols, catalogs ────────────────────────────────

func (c *Client) Sets(ctx context.Context) (*object.Collection, error) {
	return c.list(ctx, "sets", nil)
}

func (c *Client) Set(ctx context.Context, code string) (*kinds.Set, error) {
	return one[*kinds.Set](ctx, c, "sets/"+code, nil)
}

func (c *Client) Symbols(ctx context.Context) (*object.Collection, error) {
	return c.list(ctx, "symbology", nil)
}

func (c *Client) ParseMana(ctx context.Context, cost string) (*kinds.ManaCost, error) {
	return one[*kinds.ManaCost](ctx, c, "symbology/parse-mana", url.Values{"cost": {cost}})
}

func (c *Client) BulkData(ctx context.Context) (*object.Collection, error) {
	return c.list(ctx, "bulk-data", nil)
}

func (c *Client) Migrations(ctx context.Context) (*object.Collection, error) {
	return c.list(ctx, "migrations", nil)
}

type CatalogName string

const (
	CatalogCardNames         CatalogName = "card-names"
	CatalogArtistNames       CatalogName = "artist-names"
	CatalogWordBank          CatalogName = "word-bank"
	CatalogCreatureTypes     CatalogName = "creature-types"
	CatalogPlaneswalkerTypes CatalogName = "planeswalker-types"
	CatalogLandTypes         CatalogName = "land-types"
	CatalogArtifactTypes     CatalogName = "artifact-types"
	CatalogEnchantmentTypes  CatalogName = "enchantment-types"
	CatalogSpellTypes        CatalogName = "spell-types"
	CatalogPowers            CatalogName = "powers"
	CatalogToughnesses       CatalogName = "toughnesses"
	CatalogLoyalties         CatalogName = "loyalties"
	CatalogWatermarks        CatalogName = "watermarks"
	CatalogKeywordAbilities  CatalogName = "keyword-abilities"
	CatalogKeywordActions    CatalogName = "keyword-actions"
	CatalogAbilityWords      CatalogName = "ability-words"
)

// CatalogNames lists the catalogs the API serves.
var CatalogNames = []CatalogName{
	CatalogCardNames, CatalogArtistNames, CatalogWordBank, CatalogCreatureTypes,
	CatalogPlaneswalkerTypes, CatalogLandTypes, CatalogArtifactTypes,
	CatalogEnchantmentTypes, CatalogSpellTypes, CatalogPowers, CatalogToughnesses,
	CatalogLoyalties, CatalogWatermarks, CatalogKeywordAbilities,
	CatalogKeywordActions, CatalogAbilityWords,
}

func (c *Client) Catalog(ctx context.Context, name CatalogName) (*kinds.Catalog, error) {
	return one[*kinds.Catalog](ctx, c, "catalog/"+string(name), nil)
}
