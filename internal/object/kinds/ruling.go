package kinds

import (
	"time"

	"github.com/google/uuid"

	"scryfall/internal/object"
	"scryfall/internal/record"
)

const KindRuling object.Kind = "ruling"

func init() {
	object.RegisterKind(KindRuling, func(rec record.Record) object.Object { return NewRuling(rec) })
}

// Ruling is an official note or Scryfall clarification about a card.
type Ruling struct {
	base

	OracleID    uuid.UUID
	Source      RulingSource
	PublishedAt time.Time
	Comment     string
}

func NewRuling(rec record.Record) *Ruling {
	return &Ruling{
		base:        base{rec: rec},
		OracleID:    rec.UUID("oracle_id"),
		Source:      RulingSource(rec.String("source")),
		PublishedAt: rec.Date("published_at"),
		Comment:     rec.String("comment"),
	}
}

func (r *Ruling) Kind() object.Kind { return KindRuling }
