package database_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lunagic/gishiki/gishikiservices/database"
	"gotest.tools/v3/assert"
)

func newMockService(t *testing.T, dialect database.Dialect, configFuncs ...database.ServiceConfigFunc) (*database.Service, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	assert.NilError(t, err)

	service, err := database.New(database.NewDriverWithDB(dialect, db), configFuncs...)
	assert.NilError(t, err)

	return service, mock
}

func TestServicePostgresNumberedParameters(t *testing.T) {
	service, mock := newMockService(t, database.DialectPostgres())

	mock.ExpectQuery(`SELECT "name" FROM "Users" WHERE "a" IN ($1,$2,$3) AND "b" = $4 OR "c" LIKE $5 LIMIT $6`).
		WithArgs(3, 5, 6, 96, "%test%", 2).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow([]byte("Mario")))

	records, err := service.ReadSelective(
		t.Context(),
		"Users",
		[]string{"name"},
		database.Select(map[string]any{"a": []int{3, 5, 6}, "b": 96}).OrWhere("c", database.Like, "%test%"),
		database.NewResultModifier().Limit(2),
	)
	assert.NilError(t, err)
	assert.DeepEqual(t, records, []database.Record{{"name": "Mario"}})
	assert.NilError(t, mock.ExpectationsWereMet())
}

func TestServicePostgresCreateReturnsPrimaryKey(t *testing.T) {
	service, mock := newMockService(t, database.DialectPostgres(), database.WithPrimaryKey("user_id"))

	mock.ExpectQuery(`INSERT INTO "Users" ("name", "surname") VALUES ($1,$2) RETURNING "user_id"`).
		WithArgs("Mario", "Rossi").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(int64(7)))

	id, err := service.Create(t.Context(), "Users", map[string]any{"surname": "Rossi", "name": "Mario"})
	assert.NilError(t, err)
	assert.Equal(t, id, int64(7))
	assert.NilError(t, mock.ExpectationsWereMet())
}

func TestServiceSQLiteWrites(t *testing.T) {
	service, mock := newMockService(t, database.DialectSQLite())

	mock.ExpectExec(`INSERT INTO "Users" ("name") VALUES (?)`).
		WithArgs("Mario").
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec(`UPDATE "Users" SET "name" = ? WHERE "id" = ?`).
		WithArgs("Luigi", 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "Users" WHERE "id" >= ?`).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM "Users"`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	id, err := service.Create(t.Context(), "Users", map[string]any{"name": "Mario"})
	assert.NilError(t, err)
	assert.Equal(t, id, int64(5))

	affected, err := service.Update(t.Context(), "Users", map[string]any{"name": "Luigi"}, database.Select(map[string]any{"id": 5}))
	assert.NilError(t, err)
	assert.Equal(t, affected, int64(1))

	affected, err = service.Delete(t.Context(), "Users", database.NewSelectionCriteria().AndWhere("id", database.GreaterOrEqual, 5))
	assert.NilError(t, err)
	assert.Equal(t, affected, int64(3))

	affected, err = service.DeleteAll(t.Context(), "Users")
	assert.NilError(t, err)
	assert.Equal(t, affected, int64(2))

	assert.NilError(t, mock.ExpectationsWereMet())
}

func TestServiceRefusesInvalidInput(t *testing.T) {
	service, mock := newMockService(t, database.DialectSQLite())

	_, err := service.Read(t.Context(), "Users", database.NewSelectionCriteria().AndWhere("", database.Equal, 1), nil)
	assert.ErrorIs(t, err, database.ErrInvalidArgument)

	_, err = service.Read(t.Context(), "Users", nil, database.NewResultModifier().Skip(-1))
	assert.ErrorIs(t, err, database.ErrInvalidArgument)

	_, err = service.Update(t.Context(), "Users", map[string]any{}, nil)
	assert.ErrorIs(t, err, database.ErrInvalidArgument)

	_, err = service.Delete(t.Context(), "Users", nil)
	assert.ErrorIs(t, err, database.ErrInvalidArgument)

	_, err = service.Create(t.Context(), "", map[string]any{"name": "Mario"})
	assert.ErrorIs(t, err, database.ErrInvalidArgument)

	assert.NilError(t, mock.ExpectationsWereMet())
}

func TestServiceReadSingle(t *testing.T) {
	service, mock := newMockService(t, database.DialectSQLite())

	mock.ExpectQuery(`SELECT * FROM "Users" WHERE "id" = ? LIMIT ?`).
		WithArgs(1, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "Mario"))
	mock.ExpectQuery(`SELECT * FROM "Users" WHERE "id" = ? LIMIT ?`).
		WithArgs(2, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	record, err := service.ReadSingle(t.Context(), "Users", nil, database.Select(map[string]any{"id": 1}))
	assert.NilError(t, err)
	assert.DeepEqual(t, record, database.Record{"id": int64(1), "name": "Mario"})

	_, err = service.ReadSingle(t.Context(), "Users", nil, database.Select(map[string]any{"id": 2}))
	assert.ErrorIs(t, err, database.ErrNoRows)

	assert.NilError(t, mock.ExpectationsWereMet())
}

func TestServiceHooks(t *testing.T) {
	statements := []string{}
	postRuns := 0
	errHook := errors.New("hook refused")

	service, mock := newMockService(
		t,
		database.DialectSQLite(),
		database.WithPreRunFunc(func(ctx context.Context, statement string, args []any) error {
			statements = append(statements, statement)
			if len(args) > 0 && args[0] == "refuse" {
				return errHook
			}

			return nil
		}),
		database.WithPostRunFunc(func(ctx context.Context) error {
			postRuns++
			return nil
		}),
	)

	mock.ExpectExec(`INSERT INTO "Users" ("name") VALUES (?)`).
		WithArgs("Mario").
		WillReturnResult(sqlmock.NewResult(1, 1))

	_, err := service.Create(t.Context(), "Users", map[string]any{"name": "Mario"})
	assert.NilError(t, err)

	_, err = service.Create(t.Context(), "Users", map[string]any{"name": "refuse"})
	assert.ErrorIs(t, err, errHook)

	assert.DeepEqual(t, statements, []string{
		`INSERT INTO "Users" ("name") VALUES (?)`,
		`INSERT INTO "Users" ("name") VALUES (?)`,
	})
	assert.Equal(t, postRuns, 1)
	assert.NilError(t, mock.ExpectationsWereMet())
}

func TestServiceLogger(t *testing.T) {
	logs := &bytes.Buffer{}
	service, mock := newMockService(t, database.DialectSQLite(), database.WithLogger(slog.New(slog.NewTextHandler(logs, nil))))

	mock.ExpectExec(`DELETE FROM "Users"`).WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := service.DeleteAll(database.WithQueryID(t.Context()), "Users")
	assert.NilError(t, err)

	assert.Assert(t, bytes.Contains(logs.Bytes(), []byte(`msg="Database Run"`)))
	assert.Assert(t, bytes.Contains(logs.Bytes(), []byte("query_id=")))
	assert.Assert(t, bytes.Contains(logs.Bytes(), []byte("dialect=sqlite")))
	assert.NilError(t, mock.ExpectationsWereMet())
}

func TestServiceConfigErrors(t *testing.T) {
	testCases := map[string]database.ServiceConfigFunc{
		"negative retry interval": database.WithLockRetry(-1),
		"missing cache driver":    database.WithResultCache(nil, 1),
		"empty primary key":       database.WithPrimaryKey(""),
	}

	for name, configFunc := range testCases {
		t.Run(name, func(t *testing.T) {
			db, _, err := sqlmock.New()
			assert.NilError(t, err)

			_, err = database.New(database.NewDriverWithDB(database.DialectSQLite(), db), configFunc)
			assert.ErrorIs(t, err, database.ErrInvalidArgument)
		})
	}
}
