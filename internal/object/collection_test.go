package object_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scryfall/internal/object"
	"scryfall/internal/record"
)

// stubFetcher serves canned pages by locator and counts calls.
// Any locator it does not know fails the test.
type stubFetcher struct {
	t     *testing.T
	pages map[string]string
	errs  map[string]error
	calls []string
}

func newStub(t *testing.T) *stubFetcher {
	return &stubFetcher{t: t, pages: map[string]string{}, errs: map[string]error{}}
}

func (s *stubFetcher) Fetch(_ context.Context, locator string) (record.Record, error) {
	s.calls = append(s.calls, locator)
	if err, ok := s.errs[locator]; ok {
		return record.Record{}, err
	}
	doc, ok := s.pages[locator]
	if !ok {
		s.t.Fatalf("unexpected fetch of %q", locator)
	}
	return record.MustParse(doc), nil
}

// refusingFetcher fails the test on any call.
func refusingFetcher(t *testing.T) object.Fetcher {
	return object.FetcherFunc(func(_ context.Context, locator string) (record.Record, error) {
		t.Fatalf("fetch must not be called, got %q", locator)
		return record.Record{}, nil
	})
}

func page(next string, items ...string) string {
	data := "["
	for i, it := range items {
		if i > 0 {
			data += ","
		}
		data += it
	}
	data += "]"
	if next == "" {
		return fmt.Sprintf(`{"object":"list","has_more":false,"data":%s}`, data)
	}
	return fmt.Sprintf(`{"object":"list","has_more":true,"next_page":%q,"data":%s}`, next, data)
}

func w(name string) string { return fmt.Sprintf(`{"object":"widget","name":%q}`, name) }
func g(id int) string { return fmt.Sprintf(`{"object":"gadget","id":%d}`, id) }

func names(t *testing.T, objs []object.Object) []string {
	out := make([]string, 0, len(objs))
	for _, o := range objs {
		switch v := o.(type) {
		case *widget:
			out = append(out, v.Name)
		case *gadget:
			out = append(out, fmt.Sprintf("g%d", v.ID))
		case *object.Unknown:
			out = append(out, "?")
		default:
			t.Fatalf("unexpected %T", o)
		}
	}
	return out
}

// ── Contents ───────────────────────────────────────────────

func TestContents_SinglePageNeverFetches(t *testing.T) {
	ctx := context.Background()
	c, err := object.CollectionFrom(record.MustParse(page("", w("a"), g(1), w("b"))), refusingFetcher(t))
	require.NoError(t, err)

	objs, err := c.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "g1", "b"}, names(t, objs))
	assert.Equal(t, 1, c.Pages())
	assert.True(t, c.Closed())
	assert.NoError(t, c.Err())
}

func TestContents_ThreePageChain(t *testing.T) {
	ctx := context.Background()
	stub := newStub(t)
	stub.pages["p2"] = page("p3", w("c"), w("d"))
	stub.pages["p3"] = page("", g(9))

	c, err := object.CollectionFrom(record.MustParse(page("p2", w("a"), w("b"))), stub)
	require.NoError(t, err)

	objs, err := c.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d", "g9"}, names(t, objs))
	assert.Equal(t, []string{"p2", "p3"}, stub.calls)
	assert.Equal(t, 3, c.Pages())

	// Exhausted: iterating again yields nothing and fetches nothing.
	again, err := c.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, again)
	assert.Len(t, stub.calls, 2)
}

func TestContents_FetchesOnlyOnDemand(t *testing.T) {
	ctx := context.Background()
	stub := newStub(t)
	stub.pages["p2"] = page("", w("c"))

	c, err := object.CollectionFrom(record.MustParse(page("p2", w("a"), w("b"))), stub)
	require.NoError(t, err)

	seen := 0
	for _, err := range c.Contents(ctx) {
		require.NoError(t, err)
		seen++
		if seen == 2 {
			break
		}
	}
	assert.Empty(t, stub.calls)

	require.True(t, c.Next(ctx))
	assert.Equal(t, "c", c.Object().(*widget).Name)
	assert.Equal(t, []string{"p2"}, stub.calls)
}

func TestContents_SkipsEmptyPages(t *testing.T) {
	ctx := context.Background()
	stub := newStub(t)
	stub.pages["p2"] = page("p3")
	stub.pages["p3"] = page("", w("z"))

	c, err := object.CollectionFrom(record.MustParse(page("p2")), stub)
	require.NoError(t, err)

	objs, err := c.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"z"}, names(t, objs))
}

func TestContents_UnknownPassesThrough(t *testing.T) {
	ctx := context.Background()
	c, err := object.CollectionFrom(record.MustParse(page("", w("a"), `{"object":"mystery"}`, `"junk"`, w("b"))), nil)
	require.NoError(t, err)

	objs, err := c.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "?", "?", "b"}, names(t, objs))
}

// ── ContentsOf ─────────────────────────────────────────────

func TestContentsOf_FiltersByKindInOrder(t *testing.T) {
	ctx := context.Background()
	c, err := object.CollectionFrom(record.MustParse(page("",
		w("a"), g(1), `{"object":"mystery"}`, w("b"), g(2), w("c"))), refusingFetcher(t))
	require.NoError(t, err)

	widgets, err := object.AllOf[*widget](ctx, c)
	require.NoError(t, err)
	require.Len(t, widgets, 3)
	assert.Equal(t, "a", widgets[0].Name)
	assert.Equal(t, "b", widgets[1].Name)
	assert.Equal(t, "c", widgets[2].Name)
}

func TestContentsOf_AcrossPages(t *testing.T) {
	ctx := context.Background()
	stub := newStub(t)
	stub.pages["p2"] = page("", g(2), w("x"), g(3))

	c, err := object.CollectionFrom(record.MustParse(page("p2", g(1), w("y"))), stub)
	require.NoError(t, err)

	var ids []int
	for gd, err := range object.ContentsOf[*gadget](ctx, c) {
		require.NoError(t, err)
		ids = append(ids, gd.ID)
	}
	assert.Equal(t, []int{1, 2, 3}, ids)
}

// ── Failures ───────────────────────────────────────────────

func TestAdvance_ErrorPayloadStopsIteration(t *testing.T) {
	ctx := context.Background()
	stub := newStub(t)
	stub.pages["p2"] = `{"object":"error","status":500,"code":"internal","details":"boom"}`

	c, err := object.CollectionFrom(record.MustParse(page("p2", w("a"))), stub)
	require.NoError(t, err)

	var got []object.Object
	var failure error
	for obj, err := range c.Contents(ctx) {
		if err != nil {
			failure = err
			continue
		}
		got = append(got, obj)
	}

	assert.Equal(t, []string{"a"}, names(t, got))
	var apiErr *object.Error
	require.ErrorAs(t, failure, &apiErr)
	assert.Equal(t, 500, apiErr.Status)
	assert.Same(t, apiErr, c.Err())
	assert.True(t, c.Closed())
	assert.ErrorIs(t, c.Advance(ctx), object.ErrClosed)
	assert.Len(t, stub.calls, 1)
}

func TestAdvance_TransportErrorUnwrapped(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection reset")
	stub := newStub(t)
	stub.errs["p2"] = boom

	c, err := object.CollectionFrom(record.MustParse(page("p2", w("a"))), stub)
	require.NoError(t, err)

	objs, err := c.All(ctx)
	assert.Equal(t, []string{"a"}, names(t, objs))
	assert.Equal(t, boom, err)
	assert.Equal(t, boom, c.Err())
	assert.Len(t, stub.calls, 1)
}

func TestAdvance_ScannerStyle(t *testing.T) {
	ctx := context.Background()
	stub := newStub(t)
	stub.errs["p2"] = context.Canceled

	c, err := object.CollectionFrom(record.MustParse(page("p2", w("a"))), stub)
	require.NoError(t, err)

	require.True(t, c.Next(ctx))
	assert.Equal(t, "widget", c.Record().String("object"))
	assert.False(t, c.Next(ctx))
	assert.Nil(t, c.Object())
	assert.ErrorIs(t, c.Err(), context.Canceled)
}

func TestAdvance_NonListPage(t *testing.T) {
	ctx := context.Background()
	stub := newStub(t)
	stub.pages["p2"] = w("not a page")

	c, err := object.CollectionFrom(record.MustParse(page("p2")), stub)
	require.NoError(t, err)

	assert.ErrorIs(t, c.Advance(ctx), object.ErrTypeMismatch)
	assert.True(t, c.Closed())
}

func TestAdvance_MissingNextPage(t *testing.T) {
	ctx := context.Background()
	c, err := object.CollectionFrom(record.MustParse(`{"object":"list","has_more":true,"data":[]}`), refusingFetcher(t))
	require.NoError(t, err)

	assert.False(t, c.Next(ctx))
	assert.ErrorIs(t, c.Err(), object.ErrMissingNextPage)
}

func TestAdvance_LastPage(t *testing.T) {
	ctx := context.Background()
	c, err := object.CollectionFrom(record.MustParse(page("", w("a"))), refusingFetcher(t))
	require.NoError(t, err)

	assert.ErrorIs(t, c.Advance(ctx), object.ErrNoMorePages)
	assert.NoError(t, c.Err())
}

func TestAdvance_NilFetcher(t *testing.T) {
	ctx := context.Background()
	c := object.NewCollection(object.NewList(record.MustParse(page("p2"))), nil)

	assert.Error(t, c.Advance(ctx))
	assert.True(t, c.Closed())
}

// ── CollectionFrom ─────────────────────────────────────────

func TestCollectionFrom_Rejects(t *testing.T) {
	_, err := object.CollectionFrom(record.MustParse(`{"object":"error","status":404,"code":"not_found"}`), nil)
	var apiErr *object.Error
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, object.IsNotFound(err))

	_, err = object.CollectionFrom(record.MustParse(w("a")), nil)
	assert.ErrorIs(t, err, object.ErrTypeMismatch)

	_, err = object.CollectionFrom(record.MustParse(`{"data":[]}`), nil)
	assert.ErrorIs(t, err, object.ErrUnknownKind)
}

func TestCollection_TotalCards(t *testing.T) {
	c, err := object.CollectionFrom(record.MustParse(`{"object":"list","total_cards":175,"has_more":false,"data":[]}`), nil)
	require.NoError(t, err)
	assert.Equal(t, 175, c.TotalCards())
	assert.Equal(t, 175, c.Page().TotalCards)
}

func TestCollection_WarningsAcrossPages(t *testing.T) {
	ctx := context.Background()
	stub := newStub(t)
	stub.pages["p2"] = `{"object":"list","has_more":false,"warnings":["Invalid expression \"x:y\" was ignored.","Your query was too broad."],"data":[]}`

	c, err := object.CollectionFrom(record.MustParse(
		`{"object":"list","has_more":true,"next_page":"p2","warnings":["Invalid expression \"x:y\" was ignored."],"data":[{"object":"widget","name":"a"}]}`), stub)
	require.NoError(t, err)
	assert.Equal(t, []string{`Invalid expression "x:y" was ignored.`}, c.Warnings())

	_, err = c.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{`Invalid expression "x:y" was ignored.`, "Your query was too broad."}, c.Warnings())
}
