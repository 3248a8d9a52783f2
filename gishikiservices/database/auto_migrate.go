package database

import (
	"context"
	"fmt"
)

func (service *Service) CreateTable(ctx context.Context, table *Table) error {
	if table == nil {
		return ArgumentError{Argument: "table", Reason: "a table is required"}
	}

	statement, err := service.Builder().CreateTable(table.Name()).DefinedAs(table.Columns()).statement()
	if err != nil {
		return err
	}

	if _, err := service.runExecute(ctx, statement); err != nil {
		return err
	}

	return nil
}

func (service *Service) DropTable(ctx context.Context, name string) error {
	statement, err := service.Builder().DropTable(name).statement()
	if err != nil {
		return err
	}

	if _, err := service.runExecute(ctx, statement); err != nil {
		return err
	}

	return service.invalidate(ctx, name)
}

// AutoMigrate creates the tables that do not exist yet and adds the columns
// missing from the ones that do, in the order given. Columns are never
// altered or dropped. It returns how many statements were executed.
func (service *Service) AutoMigrate(ctx context.Context, tables []*Table) (changesExecuted int, err error) {
	for _, table := range tables {
		if table == nil {
			return changesExecuted, ArgumentError{Argument: "tables", Reason: "tables must not be nil"}
		}

		statements, err := service.migrationStatements(ctx, table)
		if err != nil {
			return changesExecuted, err
		}

		for _, statement := range statements {
			if _, err := service.runExecute(ctx, statement); err != nil {
				return changesExecuted, err
			}

			changesExecuted++
		}

		if len(statements) > 0 {
			if err := service.invalidate(ctx, table.Name()); err != nil {
				return changesExecuted, err
			}
		}
	}

	return changesExecuted, nil
}

func (service *Service) migrationStatements(ctx context.Context, table *Table) ([]statement, error) {
	existingColumns, found := service.existingColumns(ctx, table.Name())
	if !found {
		createStatement, err := service.Builder().CreateTable(table.Name()).DefinedAs(table.Columns()).statement()
		if err != nil {
			return nil, err
		}

		return []statement{createStatement}, nil
	}

	statements := []statement{}
	for _, column := range table.Columns() {
		if _, exists := existingColumns[column.Name()]; exists {
			continue
		}

		statements = append(statements, statement{
			Query:      service.driver.Dialect().renderAddColumn(table.Name(), column),
			Parameters: []any{},
		})
	}

	return statements, nil
}

// existingColumns reports the columns of a table, and false when the table
// cannot be read.
func (service *Service) existingColumns(ctx context.Context, table string) (map[string]struct{}, bool) {
	dialect := service.driver.Dialect()

	rows, err := service.standardLibraryDB.QueryContext(
		ctx,
		fmt.Sprintf("SELECT * FROM %s WHERE 1 = 0", dialect.quoteIdentifier(table)),
	)
	if err != nil {
		return nil, false
	}
	defer func() {
		_ = rows.Close()
	}()

	columns, err := rows.Columns()
	if err != nil {
		return nil, false
	}

	existing := map[string]struct{}{}
	for _, column := range columns {
		existing[column] = struct{}{}
	}

	return existing, true
}
