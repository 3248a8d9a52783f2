package database_test

import (
	"fmt"
	"testing"

	"github.com/lunagic/gishiki/gishikiservices/database"
)

func TestSQLite(t *testing.T) {
	t.Parallel()
	dbPath := fmt.Sprintf("%s/database.sqlite", t.TempDir())
	testSuite(t, database.NewDriverSQLite(dbPath))
}
