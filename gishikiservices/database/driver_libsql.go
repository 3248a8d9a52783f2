package database

import (
	"database/sql"
	"net/url"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

type DriverLibSQLConfig struct {
	// URL is either a libsql:// database URL or file:path for a local file.
	URL       string
	AuthToken string
}

// NewDriverLibSQL connects to a libSQL/Turso database, which speaks the SQLite dialect.
func NewDriverLibSQL(config DriverLibSQLConfig) Driver {
	return &driverLibSQL{
		config: config,
	}
}

type driverLibSQL struct {
	config DriverLibSQLConfig
}

func (driver *driverLibSQL) Open() (*sql.DB, error) {
	dsn := driver.config.URL
	if driver.config.AuthToken != "" {
		separator := "?"
		if strings.Contains(dsn, "?") {
			separator = "&"
		}

		dsn += separator + "authToken=" + url.QueryEscape(driver.config.AuthToken)
	}

	return sql.Open("libsql", dsn)
}

func (driver *driverLibSQL) Dialect() Dialect {
	return DialectSQLite()
}

// The remote protocol only reports lock contention in the message text.
func (driver *driverLibSQL) shouldRetry(err error) bool {
	if err == nil {
		return false
	}

	message := err.Error()

	return strings.Contains(message, "database is locked") ||
		strings.Contains(message, "table is locked")
}

func (driver *driverLibSQL) usesLastInsertId() bool {
	return true
}

func (driver *driverLibSQL) usesNumberedParameters() bool {
	return false
}
