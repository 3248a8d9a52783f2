package database

import (
	"database/sql"
)

// Driver opens a backend connection and tells the service how to talk to it.
type Driver interface {
	Open() (*sql.DB, error)
	Dialect() Dialect
	shouldRetry(err error) bool
	usesLastInsertId() bool
	usesNumberedParameters() bool
}

// NewDriverWithDB wraps a connection pool opened elsewhere.
func NewDriverWithDB(dialect Dialect, db *sql.DB) Driver {
	return &driverWithDB{
		dialect: dialect,
		db:      db,
	}
}

type driverWithDB struct {
	dialect Dialect
	db      *sql.DB
}

func (driver *driverWithDB) Open() (*sql.DB, error) {
	return driver.db, nil
}

func (driver *driverWithDB) Dialect() Dialect {
	return driver.dialect
}

func (driver *driverWithDB) shouldRetry(err error) bool {
	return false
}

func (driver *driverWithDB) usesLastInsertId() bool {
	return driver.dialect.renderReturning("id") == ""
}

func (driver *driverWithDB) usesNumberedParameters() bool {
	return driver.dialect.Name() == DialectPostgres().Name()
}
