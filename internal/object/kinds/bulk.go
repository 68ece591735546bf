package kinds

import (
	"net/url"
	"time"

	"github.com/google/uuid"

	"scryfall/internal/object"
	"scryfall/internal/record"
)

const (
	KindBulkData  object.Kind = "bulk_data"
	KindCatalog   object.Kind = "catalog"
	KindMigration object.Kind = "card_migration"
)

func init() {
	object.RegisterKind(KindBulkData, func(rec record.Record) object.Object { return NewBulkData(rec) })
	object.RegisterKind(KindCatalog, func(rec record.Record) object.Object { return NewCatalog(rec) })
	object.RegisterKind(KindMigration, func(rec record.Record) object.Object { return NewMigration(rec) })
}

// BulkData describes one of the daily bulk export files.
type BulkData struct {
	base

	ID              uuid.UUID
	Type            string
	Name            string
	Description     string
	UpdatedAt       time.Time // zero if absent or malformed
	Size            int
	ContentType     string
	ContentEncoding string
	DownloadURI     *url.URL
	URI             *url.URL
}

func NewBulkData(rec record.Record) *BulkData {
	updated, err := time.Parse(time.RFC3339, rec.String("updated_at"))
	if err != nil {
		updated = time.Time{}
	}
	return &BulkData{
		base:            base{rec: rec},
		ID:              rec.UUID("id"),
		Type:            rec.String("type"),
		Name:            rec.String("name"),
		Description:     rec.String("description"),
		UpdatedAt:       updated,
		Size:            rec.Int("size"),
		ContentType:     rec.String("content_type"),
		ContentEncoding: rec.String("content_encoding"),
		DownloadURI:     rec.URL("download_uri"),
		URI:             rec.URL("uri"),
	}
}

func (b *BulkData) Kind() object.Kind { return KindBulkData }

// Catalog is a flat list of strings, such as every card name.
type Catalog struct {
	base

	URI         *url.URL
	TotalValues int
	Data        []string
}

func NewCatalog(rec record.Record) *Catalog {
	return &Catalog{
		base:        base{rec: rec},
		URI:         rec.URL("uri"),
		TotalValues: rec.Int("total_values"),
		Data:        record.Strings(rec, "data"),
	}
}

func (c *Catalog) Kind() object.Kind { return KindCatalog }

// Migration records a card id that was merged into another or deleted.
type Migration struct {
	base

	ID            uuid.UUID
	URI           *url.URL
	PerformedAt   time.Time
	Strategy      MigrationStrategy
	OldScryfallID uuid.UUID
	NewScryfallID uuid.UUID // uuid.Nil for deletions
	Note          string
}

func NewMigration(rec record.Record) *Migration {
	return &Migration{
		base:          base{rec: rec},
		ID:            rec.UUID("id"),
		URI:           rec.URL("uri"),
		PerformedAt:   rec.Date("performed_at"),
		Strategy:      MigrationStrategy(rec.String("migration_strategy")),
		OldScryfallID: rec.UUID("old_scryfall_id"),
		NewScryfallID: rec.UUID("new_scryfall_id"),
		Note:          rec.String("note"),
	}
}

func (m *Migration) Kind() object.Kind { return KindMigration }
