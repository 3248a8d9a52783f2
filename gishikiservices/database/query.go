package database

type statement struct {
	Query      string
	Parameters []any
}

// Record is one result row keyed by column name.
type Record map[string]any
