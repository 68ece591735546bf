package sources

import (
	"context"

	"scryfall/internal/client"
	"scryfall/internal/etl"
	"scryfall/internal/object"
	"scryfall/internal/object/kinds"
)

func init() {
	etl.RegisterSource(&BulkDataSource{})
}

// BulkDataSource exports the bulk data index: one row per downloadable
// file, not the file contents.
type BulkDataSource struct{}

func (s *BulkDataSource) Spec() etl.SourceSpec {
	return etl.SourceSpec{Type: "bulk_data", Label: "Bulk data files"}
}

func (s *BulkDataSource) Discover(cfg etl.SourceConfig) (*etl.Schema, error) {
	if err := etl.DecodeConfig(cfg, &struct{}{}); err != nil {
		return nil, err
	}
	return &etl.Schema{Fields: []etl.Field{
		{Name: "id", Type: etl.TypeText},
		{Name: "type", Type: etl.TypeText},
		{Name: "name", Type: etl.TypeText},
		{Name: "description", Type: etl.TypeText},
		{Name: "updated_at", Type: etl.TypeDatetime},
		{Name: "size", Type: etl.TypeNumber},
		{Name: "content_type", Type: etl.TypeText},
		{Name: "download_uri", Type: etl.TypeText},
	}}, nil
}

func (s *BulkDataSource) Read(ctx context.Context, cl *client.Client, _ etl.SourceConfig) (*object.Collection, etl.RowMapper, error) {
	col, err := cl.BulkData(ctx)
	return col, bulkToRow, err
}

func bulkToRow(obj object.Object) (etl.Row, bool) {
	b, ok := obj.(*kinds.BulkData)
	if !ok {
		return etl.Row{}, false
	}
	return etl.Row{Data: map[string]any{
		"id":           uuidText(b.ID),
		"type":         b.Type,
		"name":         etl.Text(b.Name),
		"description":  etl.Text(b.Description),
		"updated_at":   etl.Date(b.UpdatedAt),
		"size":         count(b.Size),
		"content_type": etl.Text(b.ContentType),
		"download_uri": urlText(b.DownloadURI),
	}}, true
}
