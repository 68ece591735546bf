package dbclient

import (
	"strconv"

	"github.com/lib/pq"

	"scryfall/internal/etl"
)

var postgresDialect = &dialect{
	driver:      DriverPostgres,
	placeholder: func(i int) string { return "$" + strconv.Itoa(i) },
	quote:       pq.QuoteIdentifier,
	types: map[string]string{
		etl.TypeText:     "TEXT",
		etl.TypeNumber:   "DOUBLE PRECISION",
		etl.TypeBoolean:  "BOOLEAN",
		etl.TypeDatetime: "TIMESTAMPTZ",
	},
	columnsQuery: `SELECT column_name FROM information_schema.columns
		 WHERE table_schema = current_schema() AND table_name = $1`,
}
