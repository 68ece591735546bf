package dbclient

import (
	"fmt"

	"scryfall/internal/etl"
	"scryfall/internal/logging"
)

var logger = logging.Logger("dbclient")

// Supported target drivers.
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverMongoDB  = "mongodb"
)

// Drivers lists the accepted Target.Driver values.
var Drivers = []string{DriverSQLite, DriverMySQL, DriverPostgres, DriverMongoDB}

// NewSink opens a sink for the given target. The caller closes it.
func NewSink(t etl.Target) (etl.Sink, error) {
	if t.DSN == "" {
		return nil, fmt.Errorf("%s target: dsn is required", t.Driver)
	}
	switch t.Driver {
	case DriverSQLite:
		return newSQLSink(sqliteDialect, sqliteDSN(t.DSN))
	case DriverMySQL:
		dsn, err := mysqlDSN(t.DSN)
		if err != nil {
			return nil, err
		}
		return newSQLSink(mysqlDialect, dsn)
	case DriverPostgres:
		return newSQLSink(postgresDialect, t.DSN)
	case DriverMongoDB:
		return newMongoSink(t.DSN)
	default:
		return nil, fmt.Errorf("unsupported driver: %q", t.Driver)
	}
}
