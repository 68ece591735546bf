package dbclient

import (
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"scryfall/internal/etl"
	"scryfall/internal/record"
)

var sqliteDialect = &dialect{
	driver:      DriverSQLite,
	placeholder: func(int) string { return "?" },
	quote:       doubleQuote,
	types: map[string]string{
		etl.TypeText:     "TEXT",
		etl.TypeNumber:   "REAL",
		etl.TypeBoolean:  "INTEGER",
		etl.TypeDatetime: "TEXT",
	},
	columnsQuery: `SELECT name FROM pragma_table_info(?)`,
	value:        sqliteValue,
}

// sqliteDSN opens the file in WAL mode with a busy timeout so a
// scheduled sync and a reader can share it.
func sqliteDSN(path string) string {
	if strings.Contains(path, "_pragma=") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// sqliteValue stores times as text: bare dates as YYYY-MM-DD, anything
// else as RFC 3339.
func sqliteValue(v any) any {
	t, ok := v.(time.Time)
	if !ok {
		return v
	}
	if t.Equal(t.Truncate(24 * time.Hour)) {
		return t.UTC().Format(record.DateLayout)
	}
	return t.UTC().Format(time.RFC3339)
}
