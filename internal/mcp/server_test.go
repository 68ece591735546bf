package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scryfall/internal/client"
	_ "scryfall/internal/etl/sources"
	"scryfall/internal/record"
	"scryfall/internal/service"
	"scryfall/internal/storage"
)

const base = "https://api.test/"

type canned map[string]string

func (c canned) Fetch(_ context.Context, locator string) (record.Record, error) {
	b, ok := c[locator]
	if !ok {
		return record.Empty(), fmt.Errorf("unexpected fetch %s", locator)
	}
	return record.Parse([]byte(b))
}

const elves = `{"object":"list","total_cards":2,"has_more":false,"data":[
	{"object":"card","id":"6a0b230b-d391-4998-a3f7-7b158a0ec2cd","name":"Llanowar Elves","mana_cost":"{G}","cmc":1,
	 "type_line":"Creature — Elf Druid","colors":["G"],"set":"dom","collector_number":"168","rarity":"common",
	 "prices":{"usd":"0.25"},"legalities":{"standard":"not_legal","modern":"legal","pauper":"legal"}},
	{"object":"card","id":"73542493-cd0b-4bb7-a5b8-8f889c76e4d6","name":"Elvish Mystic","mana_cost":"{G}","cmc":1,
	 "type_line":"Creature — Elf Druid","colors":["G"],"set":"m14","collector_number":"169","rarity":"common"}]}`

func newTestServer(t *testing.T, pages canned) *Server {
	c, err := client.New(pages, base)
	require.NoError(t, err)

	db, err := storage.New(filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	svc := service.NewSyncService(storage.NewSyncStore(db), c, &service.MockEmitter{})
	t.Cleanup(svc.Stop)

	return New(Deps{Client: c, Sync: svc}, "test")
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func decode[T any](t *testing.T, res *mcp.CallToolResult) T {
	t.Helper()
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	var out T
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

func searchURL(q string) string {
	return base + "cards/search?" + url.Values{"q": {q}}.Encode()
}

func TestSearchCards(t *testing.T) {
	s := newTestServer(t, canned{searchURL("t:elf"): elves})

	res := call(t, s.handleSearchCards, map[string]any{"query": "t:elf", "limit": 1.0})
	out := decode[struct {
		TotalCards int           `json:"totalCards"`
		Cards      []cardSummary `json:"cards"`
	}](t, res)

	assert.Equal(t, 2, out.TotalCards)
	require.Len(t, out.Cards, 1)
	assert.Equal(t, "Llanowar Elves", out.Cards[0].Name)
	assert.Equal(t, "G", out.Cards[0].Colors)
	assert.Equal(t, "0.25", out.Cards[0].USD)
}

func TestSearchCards_Warnings(t *testing.T) {
	s := newTestServer(t, canned{
		searchURL("t:elf zz:1"): `{"object":"list","has_more":false,"total_cards":1,"warnings":["Invalid expression \"zz:1\" was ignored."],
			"data":[{"object":"card","name":"Llanowar Elves"}]}`,
	})

	res := call(t, s.handleSearchCards, map[string]any{"query": "t:elf zz:1"})
	out := decode[struct {
		Cards    []cardSummary `json:"cards"`
		Warnings []string      `json:"warnings"`
	}](t, res)
	assert.Len(t, out.Cards, 1)
	assert.Equal(t, []string{`Invalid expression "zz:1" was ignored.`}, out.Warnings)
}

func TestSearchCards_NoMatch(t *testing.T) {
	s := newTestServer(t, canned{
		searchURL("t:wombat"): `{"object":"error","status":404,"code":"not_found","details":"Your query didn't match any cards."}`,
	})

	res := call(t, s.handleSearchCards, map[string]any{"query": "t:wombat"})
	out := decode[map[string]any](t, res)
	assert.Equal(t, 0.0, out["totalCards"])
	assert.Empty(t, out["cards"])
}

func TestGetCard_ByName(t *testing.T) {
	var list struct {
		Data []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(elves), &list))
	named := base + "cards/named?" + url.Values{"fuzzy": {"llanowar"}}.Encode()
	s := newTestServer(t, canned{named: string(list.Data[0])})

	res := call(t, s.handleGetCard, map[string]any{"name": "llanowar"})
	out := decode[struct {
		Card    cardSummary `json:"card"`
		LegalIn []string    `json:"legalIn"`
	}](t, res)
	assert.Equal(t, "Llanowar Elves", out.Card.Name)
	assert.Equal(t, []string{"modern", "pauper"}, out.LegalIn)
}

func TestGetCard_APIErrorIsToolError(t *testing.T) {
	named := base + "cards/named?" + url.Values{"exact": {"Elf"}}.Encode()
	s := newTestServer(t, canned{
		named: `{"object":"error","status":404,"code":"not_found","type":"ambiguous","details":"Too many cards match ambiguous name “Elf”."}`,
	})

	res := call(t, s.handleGetCard, map[string]any{"name": "Elf", "exact": true})
	assert.True(t, res.IsError)
}

func TestGetCard_RequiresIDOrName(t *testing.T) {
	s := newTestServer(t, canned{})
	_, err := s.handleGetCard(context.Background(), mcp.CallToolRequest{})
	assert.Error(t, err)
}

func TestListSets_FiltersAndOrders(t *testing.T) {
	s := newTestServer(t, canned{base + "sets": `{"object":"list","has_more":false,"data":[
		{"object":"set","code":"m20","name":"Core Set 2020","set_type":"core","released_at":"2019-07-12"},
		{"object":"set","code":"m21","name":"Core Set 2021","set_type":"core","released_at":"2020-07-03"},
		{"object":"set","code":"khm","name":"Kaldheim","set_type":"expansion","released_at":"2021-02-05"},
		{"object":"set","code":"ha1","name":"Historic Anthology 1","set_type":"core","digital":true}]}`})

	res := call(t, s.handleListSets, map[string]any{"setType": "core"})
	sets := decode[[]setSummary](t, res)
	require.Len(t, sets, 2)
	assert.Equal(t, "m21", sets[0].Code)
	assert.Equal(t, "2020-07-03", sets[0].ReleasedAt)
	assert.Equal(t, "m20", sets[1].Code)
}

func TestGetCatalog(t *testing.T) {
	s := newTestServer(t, canned{
		base + "catalog/powers": `{"object":"catalog","total_values":3,"data":["*","0","1"]}`,
	})

	res := call(t, s.handleGetCatalog, map[string]any{"name": "powers"})
	out := decode[map[string]any](t, res)
	assert.Equal(t, 3.0, out["total"])

	_, err := s.handleGetCatalog(context.Background(), mcp.CallToolRequest{})
	assert.Error(t, err)
}

func TestSyncTools(t *testing.T) {
	s := newTestServer(t, canned{searchURL("t:elf"): elves})

	res := call(t, s.handlePreviewSyncSource, map[string]any{
		"sourceType":       "search",
		"sourceConfigJSON": `{"query":"t:elf"}`,
		"maxRows":          1.0,
	})
	preview := decode[struct {
		Columns []string         `json:"columns"`
		Rows    []map[string]any `json:"rows"`
	}](t, res)
	assert.Contains(t, preview.Columns, "name")
	require.Len(t, preview.Rows, 1)
	assert.Equal(t, "Llanowar Elves", preview.Rows[0]["name"])

	dsn := filepath.Join(t.TempDir(), "cards.db")
	res = call(t, s.handleCreateSyncJob, map[string]any{
		"name":             "elves",
		"sourceType":       "search",
		"sourceConfigJSON": map[string]any{"query": "t:elf"},
		"transformsJSON":   `[{"type":"select","config":{"fields":["id","name","set"]}}]`,
		"driver":           "sqlite",
		"dsn":              dsn,
		"table":            "elves",
	})
	job := decode[jobSummary](t, res)
	assert.Equal(t, "sqlite:elves", job.Target)
	assert.Equal(t, "manual", job.Trigger)

	res = call(t, s.handleRunSyncJob, map[string]any{"job": "elves"})
	run := decode[map[string]any](t, res)
	assert.Equal(t, "success", run["status"])
	assert.Equal(t, 2.0, run["rowsWritten"])

	res = call(t, s.handleListSyncJobs, nil)
	jobs := decode[[]jobSummary](t, res)
	require.Len(t, jobs, 1)
	assert.Equal(t, "success", jobs[0].LastStatus)
}

func TestJobRunsResource(t *testing.T) {
	s := newTestServer(t, canned{})
	req := mcp.ReadResourceRequest{}
	req.Params.URI = jobRunsPrefix + "missing/runs"
	_, err := s.handleJobRunsResource(context.Background(), req)
	assert.ErrorIs(t, err, storage.ErrJobNotFound)
}
