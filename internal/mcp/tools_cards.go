package mcpserver

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/samber/lo"

	"scryfall/internal/client"
	"scryfall/internal/object"
	"scryfall/internal/object/kinds"
	"scryfall/internal/record"
)

const (
	defaultSearchLimit = 25
	maxSearchLimit     = 175
)

func (s *Server) registerCardTools() {
	readOnly := mcp.WithToolAnnotation(mcp.ToolAnnotation{ReadOnlyHint: boolPtr(true)})

	s.mcp.AddTool(mcp.NewTool("search_cards",
		mcp.WithDescription(`Search cards with the full-text query syntax, e.g. "t:elf c:g cmc<=2" or "o:\"draw a card\" f:modern". Returns card summaries, first match first.`),
		mcp.WithString("query", mcp.Description("Search query"), mcp.Required()),
		mcp.WithString("order", mcp.Description("Sort order"),
			mcp.Enum("name", "set", "released", "rarity", "color", "usd", "eur", "cmc", "power", "toughness", "edhrec", "artist")),
		mcp.WithString("unique", mcp.Description("Strategy for omitting duplicates"), mcp.Enum("cards", "art", "prints")),
		mcp.WithNumber("limit", mcp.Description(fmt.Sprintf("Maximum cards to return (default %d, max %d)", defaultSearchLimit, maxSearchLimit))),
		readOnly,
	), s.handleSearchCards)

	s.mcp.AddTool(mcp.NewTool("get_card",
		mcp.WithDescription("Fetch one card by id or by name. With a name, fuzzy matching is used unless exact is true."),
		mcp.WithString("id", mcp.Description("Card id (UUID)")),
		mcp.WithString("name", mcp.Description("Card name")),
		mcp.WithString("set", mcp.Description("Restrict a name lookup to this set code")),
		mcp.WithBoolean("exact", mcp.Description("Require an exact name match")),
		mcp.WithBoolean("rulings", mcp.Description("Include the card's rulings")),
		readOnly,
	), s.handleGetCard)

	s.mcp.AddTool(mcp.NewTool("list_sets",
		mcp.WithDescription("List card sets, newest first, optionally filtered by set type"),
		mcp.WithString("setType", mcp.Description("Only sets of this type, e.g. expansion, core, masters, commander")),
		mcp.WithBoolean("includeDigital", mcp.Description("Include digital-only sets")),
		readOnly,
	), s.handleListSets)

	catalogs := lo.Map(client.CatalogNames, func(n client.CatalogName, _ int) string { return string(n) })
	s.mcp.AddTool(mcp.NewTool("get_catalog",
		mcp.WithDescription("Fetch a catalog: a list of valid values such as creature types or keyword abilities"),
		mcp.WithString("name", mcp.Description("Catalog name"), mcp.Required(), mcp.Enum(catalogs...)),
		readOnly,
	), s.handleGetCatalog)
}

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleSearchCards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	limit := req.GetInt("limit", defaultSearchLimit)
	if limit <= 0 || limit > maxSearchLimit {
		limit = defaultSearchLimit
	}

	col, err := s.client.Search(ctx, query, client.SearchOptions{
		Order:  req.GetString("order", ""),
		Unique: req.GetString("unique", ""),
	})
	if object.IsNotFound(err) {
		return jsonResult(map[string]any{"totalCards": 0, "cards": []cardSummary{}})
	}
	if err != nil {
		return apiErrorResult(err)
	}

	cards := make([]cardSummary, 0, limit)
	for obj, err := range col.Contents(ctx) {
		if err != nil {
			return apiErrorResult(err)
		}
		if card, ok := obj.(*kinds.Card); ok {
			cards = append(cards, summarizeCard(card))
		}
		if len(cards) >= limit {
			break
		}
	}
	out := map[string]any{
		"totalCards": col.TotalCards(),
		"cards":      cards,
	}
	if ws := col.Warnings(); len(ws) > 0 {
		out["warnings"] = ws
	}
	return jsonResult(out)
}

func (s *Server) handleGetCard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	name := req.GetString("name", "")

	var card *kinds.Card
	var err error
	switch {
	case id != "":
		uid, perr := uuid.Parse(id)
		if perr != nil {
			return nil, fmt.Errorf("invalid card id %q: %w", id, perr)
		}
		card, err = s.client.Card(ctx, uid)
	case name != "":
		card, err = s.client.Named(ctx, name, !req.GetBool("exact", false), req.GetString("set", ""))
	default:
		return nil, fmt.Errorf("id or name is required")
	}
	if err != nil {
		return apiErrorResult(err)
	}

	out := map[string]any{"card": summarizeCard(card)}
	if legal := legalFormats(card); len(legal) > 0 {
		out["legalIn"] = legal
	}
	if req.GetBool("rulings", false) {
		col, err := s.client.Rulings(ctx, card.ID)
		if err != nil {
			return apiErrorResult(err)
		}
		rulings, err := object.AllOf[*kinds.Ruling](ctx, col)
		if err != nil {
			return apiErrorResult(err)
		}
		out["rulings"] = lo.Map(rulings, func(r *kinds.Ruling, _ int) map[string]string {
			return map[string]string{
				"source":      string(r.Source),
				"publishedAt": r.PublishedAt.Format(record.DateLayout),
				"comment":     r.Comment,
			}
		})
	}
	return jsonResult(out)
}

// legalFormats lists the formats card is legal in, in API order.
func legalFormats(card *kinds.Card) []string {
	if card.Legalities == nil {
		return nil
	}
	var out []string
	for pair := card.Legalities.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value == kinds.Legal {
			out = append(out, pair.Key)
		}
	}
	return out
}

func (s *Server) handleListSets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	col, err := s.client.Sets(ctx)
	if err != nil {
		return apiErrorResult(err)
	}
	sets, err := object.AllOf[*kinds.Set](ctx, col)
	if err != nil {
		return apiErrorResult(err)
	}

	setType := req.GetString("setType", "")
	digital := req.GetBool("includeDigital", false)
	sets = lo.Filter(sets, func(st *kinds.Set, _ int) bool {
		return (digital || !st.Digital) && (setType == "" || string(st.SetType) == setType)
	})
	slices.SortStableFunc(sets, func(a, b *kinds.Set) int { return b.ReleasedAt.Compare(a.ReleasedAt) })
	return jsonResult(lo.Map(sets, func(st *kinds.Set, _ int) setSummary { return summarizeSet(st) }))
}

func (s *Server) handleGetCatalog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := client.CatalogName(req.GetString("name", ""))
	if !slices.Contains(client.CatalogNames, name) {
		return nil, fmt.Errorf("unknown catalog %q", name)
	}
	cat, err := s.client.Catalog(ctx, name)
	if err != nil {
		return apiErrorResult(err)
	}
	return jsonResult(map[string]any{
		"name":   name,
		"total":  cat.TotalValues,
		"values": cat.Data,
	})
}
