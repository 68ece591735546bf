package object

import "scryfall/internal/record"

func init() {
	RegisterKind(KindList, func(rec record.Record) Object { return NewList(rec) })
}

// List is one page of a paginated result.
type List struct {
	rec record.Record

	Data       []record.Record
	TotalCards int    // only set on card searches, -1 otherwise
	HasMore    bool
	NextPage   string // opaque locator, resolved by the Fetcher
	Warnings   []string
}

// NewList builds a page from rec. Entries of data that are not objects
// become empty records, which decode as Unknown.
func NewList(rec record.Record) *List {
	return &List{
		rec:        rec,
		Data:       record.List(rec, "data", record.AsRecord, func(r record.Record) record.Record { return r }),
		TotalCards: rec.Int("total_cards"),
		HasMore:    rec.Bool("has_more"),
		NextPage:   rec.String("next_page"),
		Warnings:   record.Strings(rec, "warnings"),
	}
}

func (l *List) Kind() Kind            { return KindList }
func (l *List) Record() record.Record { return l.rec }

// Len returns the number of records on this page.
func (l *List) Len() int { return len(l.Data) }
