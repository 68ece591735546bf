package sources

import (
	"context"

	"scryfall/internal/client"
	"scryfall/internal/etl"
	"scryfall/internal/object"
	"scryfall/internal/object/kinds"
)

func init() {
	etl.RegisterSource(&MigrationsSource{})
}

// MigrationsSource exports card id migrations, e.g. to repair stored
// card references after merges and deletions.
type MigrationsSource struct{}

type MigrationsConfig struct {
	Strategy string `mapstructure:"strategy"` // "merge" | "delete" | "" for both
}

func (s *MigrationsSource) Spec() etl.SourceSpec {
	return etl.SourceSpec{
		Type:  "migrations",
		Label: "Card migrations",
		ConfigFields: []etl.ConfigField{
			{Key: "strategy", Label: "Strategy", Type: "select", Options: []string{"merge", "delete"}},
		},
	}
}

func (s *MigrationsSource) Discover(cfg etl.SourceConfig) (*etl.Schema, error) {
	var c MigrationsConfig
	if err := etl.DecodeConfig(cfg, &c); err != nil {
		return nil, err
	}
	return &etl.Schema{Fields: []etl.Field{
		{Name: "id", Type: etl.TypeText},
		{Name: "performed_at", Type: etl.TypeDatetime},
		{Name: "strategy", Type: etl.TypeText},
		{Name: "old_scryfall_id", Type: etl.TypeText},
		{Name: "new_scryfall_id", Type: etl.TypeText},
		{Name: "note", Type: etl.TypeText},
	}}, nil
}

func (s *MigrationsSource) Read(ctx context.Context, cl *client.Client, cfg etl.SourceConfig) (*object.Collection, etl.RowMapper, error) {
	var c MigrationsConfig
	if err := etl.DecodeConfig(cfg, &c); err != nil {
		return nil, nil, err
	}
	col, err := cl.Migrations(ctx)
	return col, c.toRow, err
}

func (c MigrationsConfig) toRow(obj object.Object) (etl.Row, bool) {
	m, ok := obj.(*kinds.Migration)
	if !ok {
		return etl.Row{}, false
	}
	if c.Strategy != "" && string(m.Strategy) != c.Strategy {
		return etl.Row{}, false
	}
	return etl.Row{Data: map[string]any{
		"id":              uuidText(m.ID),
		"performed_at":    etl.Date(m.PerformedAt),
		"strategy":        etl.Text(string(m.Strategy)),
		"old_scryfall_id": uuidText(m.OldScryfallID),
		"new_scryfall_id": uuidText(m.NewScryfallID),
		"note":            etl.Text(m.Note),
	}}, true
}
