package object

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"

	"scryfall/internal/logging"
	"scryfall/internal/record"
)

var logger = logging.Logger("object/collection")

// Fetcher resolves a page locator to the record it points at.
// Implementations must be safe for concurrent independent calls if
// several collections are iterated at once.
type Fetcher interface {
	Fetch(ctx context.Context, locator string) (record.Record, error)
}

// FetcherFunc adapts a plain function to Fetcher.
type FetcherFunc func(ctx context.Context, locator string) (record.Record, error)

func (f FetcherFunc) Fetch(ctx context.Context, locator string) (record.Record, error) {
	return f(ctx, locator)
}

var errNoFetcher = errors.New("collection has no fetcher")

// ── Collection ─────────────────────────────────────────────
// A Collection chains pages lazily. It holds exactly one page at a time
// and only fetches the next one when the consumer runs past the end of
// the current one. Iteration is single-pass; start over by building a
// new Collection from the first page.
//
// States:
//   Open    current page held, has_more may still be true
//   Closed  last page reached, or an advance failed (Err is set)
//
// A Collection is not safe for concurrent use.

// Collection is a lazily paginated sequence of decoded objects.
type Collection struct {
	fetcher Fetcher
	page    *List
	pages   int
	pos     int
	current  Object
	err      error
	warnings []string
}

// NewCollection starts a collection at first.
func NewCollection(first *List, f Fetcher) *Collection {
	if f == nil {
		f = FetcherFunc(func(context.Context, string) (record.Record, error) {
			return record.Record{}, errNoFetcher
		})
	}
	c := &Collection{fetcher: f, page: first, pages: 1}
	c.collectWarnings(first)
	return c
}

// CollectionFrom decodes rec as the first page. An error record is
// returned as *Error; any other non-list record is a type mismatch.
func CollectionFrom(rec record.Record, f Fetcher) (*Collection, error) {
	first, err := DecodeAs[*List](rec)
	if err != nil {
		return nil, err
	}
	return NewCollection(first, f), nil
}

// Page returns the page currently held.
func (c *Collection) Page() *List { return c.page }

// Pages returns how many pages have been materialized so far.
func (c *Collection) Pages() int { return c.pages }

// TotalCards returns the total_cards hint of the current page, or -1.
func (c *Collection) TotalCards() int { return c.page.TotalCards }

// Warnings returns the distinct warnings of every page materialized so
// far, in the order they first appeared.
func (c *Collection) Warnings() []string { return c.warnings }

func (c *Collection) collectWarnings(page *List) {
	for _, w := range page.Warnings {
		if !slices.Contains(c.warnings, w) {
			logger.Warn("api warning", "page", c.pages, "warning", w)
			c.warnings = append(c.warnings, w)
		}
	}
}

// Closed reports whether no further page can be fetched.
func (c *Collection) Closed() bool { return c.err != nil || !c.page.HasMore }

// Err returns the failure that closed the collection, if any.
// Reaching the last page is not a failure.
func (c *Collection) Err() error { return c.err }

// Advance replaces the current page with the next one.
//
// Transport errors are returned as-is. An error payload is returned as
// *Error. Either way the collection is closed afterwards and later calls
// return ErrClosed.
func (c *Collection) Advance(ctx context.Context) error {
	if c.err != nil {
		return ErrClosed
	}
	if !c.page.HasMore {
		return ErrNoMorePages
	}
	if c.page.NextPage == "" {
		c.err = ErrMissingNextPage
		return c.err
	}

	logger.Debug("advance", "page", c.pages+1, "locator", c.page.NextPage)
	rec, err := c.fetcher.Fetch(ctx, c.page.NextPage)
	if err != nil {
		c.err = err
		return err
	}

	switch obj := Decode(rec).(type) {
	case *List:
		c.page = obj
		c.pages++
		c.pos = 0
		c.collectWarnings(obj)
		return nil
	case *Error:
		c.err = obj
		return obj
	default:
		c.err = fmt.Errorf("advance: %w: got %q", ErrTypeMismatch, obj.Kind())
		return c.err
	}
}

// Next moves to the next object, advancing pages as needed. It returns
// false at the end of the last page or when an advance fails; check Err.
func (c *Collection) Next(ctx context.Context) bool {
	c.current = nil
	for c.pos >= len(c.page.Data) {
		if c.Closed() {
			return false
		}
		if c.Advance(ctx) != nil {
			return false
		}
	}
	c.current = Decode(c.page.Data[c.pos])
	c.pos++
	return true
}

// Object returns the object produced by the last successful Next.
func (c *Collection) Object() Object { return c.current }

// Record returns the raw record behind Object.
func (c *Collection) Record() record.Record {
	if c.current == nil {
		return record.Record{}
	}
	return c.current.Record()
}

// Contents yields every object of every page in order. Records of no
// known kind pass through as *Unknown. If an advance fails, the failure
// is yielded once with a nil Object and the sequence ends.
func (c *Collection) Contents(ctx context.Context) iter.Seq2[Object, error] {
	return func(yield func(Object, error) bool) {
		for c.Next(ctx) {
			if !yield(c.current, nil) {
				return
			}
		}
		if c.err != nil {
			yield(nil, c.err)
		}
	}
}

// ContentsOf is Contents restricted to objects of type T. Everything
// else, Unknown included, is skipped.
func ContentsOf[T Object](ctx context.Context, c *Collection) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for obj, err := range c.Contents(ctx) {
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			if v, ok := obj.(T); ok {
				if !yield(v, nil) {
					return
				}
			}
		}
	}
}

// All drains the collection. On failure it returns what was read before
// the failing page together with the error.
func (c *Collection) All(ctx context.Context) ([]Object, error) {
	var out []Object
	for obj, err := range c.Contents(ctx) {
		if err != nil {
			return out, err
		}
		out = append(out, obj)
	}
	return out, nil
}

// AllOf drains the collection keeping only objects of type T.
func AllOf[T Object](ctx context.Context, c *Collection) ([]T, error) {
	var out []T
	for v, err := range ContentsOf[T](ctx, c) {
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}
