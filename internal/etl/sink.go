package etl

import (
	"context"
	"fmt"
)

// ── Sink ───────────────────────────────────────────────────
// A Sink writes rows into a target database.
//
// Pattern: Singer target protocol.

// SyncMode determines how rows are written to the sink.
type SyncMode string

const (
	SyncReplace SyncMode = "replace" // drop existing rows, insert fresh
	SyncAppend  SyncMode = "append"  // add rows without deleting existing
)

// ParseSyncMode maps "" to SyncReplace and rejects unknown modes.
func ParseSyncMode(s string) (SyncMode, error) {
	switch SyncMode(s) {
	case "", SyncReplace:
		return SyncReplace, nil
	case SyncAppend:
		return SyncAppend, nil
	}
	return "", fmt.Errorf("unknown sync mode: %q", s)
}

// Target names where a job writes: a driver, its connection string and
// the table (or collection) to fill.
type Target struct {
	Driver string `json:"driver" mapstructure:"driver"` // "sqlite" | "mysql" | "postgres" | "mongodb"
	DSN    string `json:"dsn"    mapstructure:"dsn"`
	Table  string `json:"table"  mapstructure:"table"`
}

// Sink writes rows to a target system.
type Sink interface {
	Write(ctx context.Context, table string, schema *Schema, rows []Row, mode SyncMode) (int, error)
	Close() error
}
