package database

import (
	"errors"
	"fmt"
)

var (
	ErrNoRows          = errors.New("no rows found")
	ErrBlankQuery      = errors.New("blank query")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrSchemaConflict  = errors.New("schema conflict")
)

// ArgumentError reports caller misuse at the call that introduced the bad input.
type ArgumentError struct {
	Argument string
	Reason   string
}

func (err ArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s: %s", err.Argument, err.Reason)
}

func (err ArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

type ErrDuplicateColumn struct {
	Table  string
	Column string
}

func (err ErrDuplicateColumn) Error() string {
	return fmt.Sprintf("duplicate column %s in table %s", err.Column, err.Table)
}

func (err ErrDuplicateColumn) Unwrap() error {
	return ErrSchemaConflict
}

type ErrDuplicateForeignKey struct {
	Table  string
	Target string
}

func (err ErrDuplicateForeignKey) Error() string {
	return fmt.Sprintf("duplicate foreign key to %s in table %s", err.Target, err.Table)
}

func (err ErrDuplicateForeignKey) Unwrap() error {
	return ErrSchemaConflict
}

type ErrUnsupportedType struct {
	Type string
}

func (err ErrUnsupportedType) Error() string {
	return fmt.Sprintf("unsupported type: %s", err.Type)
}

func (err ErrUnsupportedType) Unwrap() error {
	return ErrSchemaConflict
}
