package dbclient

import (
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"scryfall/internal/etl"
)

var mysqlDialect = &dialect{
	driver:      DriverMySQL,
	placeholder: func(int) string { return "?" },
	quote: func(name string) string {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	},
	types: map[string]string{
		etl.TypeText:     "TEXT",
		etl.TypeNumber:   "DOUBLE",
		etl.TypeBoolean:  "BOOLEAN",
		etl.TypeDatetime: "DATETIME",
	},
	columnsQuery: `SELECT COLUMN_NAME FROM INFORMATION_SCHEMA.COLUMNS
		 WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?`,
}

// mysqlDSN normalises a user:pass@tcp(host:port)/db DSN so DATETIME
// columns scan as time.Time.
func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}
