package dbclient

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"scryfall/internal/etl"
)

// dialect holds what differs between the database/sql drivers.
type dialect struct {
	driver       string
	placeholder  func(i int) string // 1-based
	quote        func(name string) string
	types        map[string]string // etl field type → column type
	columnsQuery string            // lists a table's columns, table name as the only arg
	value        func(v any) any   // optional per-value conversion
}

func (d *dialect) columnType(fieldType string) string {
	if t, ok := d.types[fieldType]; ok {
		return t
	}
	return d.types[etl.TypeText]
}

func (d *dialect) createTable(table string, schema *etl.Schema, ifNotExists bool) string {
	cols := make([]string, 0, len(schema.Fields))
	for _, f := range schema.Fields {
		cols = append(cols, d.quote(f.Name)+" "+d.columnType(f.Type))
	}
	exists := ""
	if ifNotExists {
		exists = "IF NOT EXISTS "
	}
	return fmt.Sprintf("CREATE TABLE %s%s (%s)", exists, d.quote(table), strings.Join(cols, ", "))
}

func (d *dialect) insert(table string, names []string) string {
	cols := make([]string, len(names))
	marks := make([]string, len(names))
	for i, n := range names {
		cols[i] = d.quote(n)
		marks[i] = d.placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.quote(table), strings.Join(cols, ", "), strings.Join(marks, ", "))
}

func doubleQuote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// sqlSink is the shared sink for SQLite, MySQL and Postgres.
type sqlSink struct {
	d  *dialect
	db *sql.DB
}

func newSQLSink(d *dialect, dsn string) (*sqlSink, error) {
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.driver, err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(10 * time.Minute)
	return &sqlSink{d: d, db: db}, nil
}

// Write replaces or extends table inside one transaction. Replace drops
// and recreates the table from schema; append creates it when missing and
// adds any columns the schema gained. MySQL commits DDL implicitly, so
// there only the inserts are atomic.
func (s *sqlSink) Write(ctx context.Context, table string, schema *etl.Schema, rows []etl.Row, mode etl.SyncMode) (int, error) {
	if table == "" {
		return 0, errors.New("target table is required")
	}
	if len(schema.Fields) == 0 {
		return 0, fmt.Errorf("table %s: schema has no fields", table)
	}
	if mode == etl.SyncAppend && len(rows) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if mode == etl.SyncReplace {
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+s.d.quote(table)); err != nil {
			return 0, fmt.Errorf("drop %s: %w", table, err)
		}
		if _, err := tx.ExecContext(ctx, s.d.createTable(table, schema, false)); err != nil {
			return 0, fmt.Errorf("create %s: %w", table, err)
		}
	} else {
		if _, err := tx.ExecContext(ctx, s.d.createTable(table, schema, true)); err != nil {
			return 0, fmt.Errorf("create %s: %w", table, err)
		}
		if err := s.ensureColumns(ctx, tx, table, schema); err != nil {
			return 0, fmt.Errorf("ensure columns: %w", err)
		}
	}

	names := schema.FieldNames()
	stmt, err := tx.PrepareContext(ctx, s.d.insert(table, names))
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(names))
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		for j, n := range names {
			args[j] = row.Data[n]
			if s.d.value != nil {
				args[j] = s.d.value(args[j])
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	logger.Debug("rows written", "driver", s.d.driver, "table", table, "rows", len(rows), "mode", mode)
	return len(rows), nil
}

// ensureColumns adds the schema fields the table does not have yet.
func (s *sqlSink) ensureColumns(ctx context.Context, tx *sql.Tx, table string, schema *etl.Schema) error {
	rows, err := tx.QueryContext(ctx, s.d.columnsQuery, table)
	if err != nil {
		return err
	}
	existing := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return err
		}
		existing[name] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, f := range schema.Fields {
		if existing[f.Name] {
			continue
		}
		ddl := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", s.d.quote(table), s.d.quote(f.Name), s.d.columnType(f.Type))
		if _, err := tx.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("add column %s: %w", f.Name, err)
		}
	}
	return nil
}

func (s *sqlSink) Close() error {
	return s.db.Close()
}
