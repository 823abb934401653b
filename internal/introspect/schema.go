package introspect

import (
	"context"
	"errors"
	"fmt"
)

// ErrTableNotFound is returned when the schema provider knows no columns for a table.
var ErrTableNotFound = errors.New("table not found")

// Column represents a table column.
type Column struct {
	Name       string      `json:"name" yaml:"name"`
	Type       StorageType `json:"type" yaml:"type"`
	RawType    string      `json:"raw_type,omitempty" yaml:"raw_type,omitempty"`
	AllowNull  bool        `json:"allow_null" yaml:"allow_null"`
	MaxLength  *int        `json:"max_length,omitempty" yaml:"max_length,omitempty"`
	Default    *string     `json:"default,omitempty" yaml:"default,omitempty"`
	PrimaryKey bool        `json:"pk,omitempty" yaml:"pk,omitempty"`
}

// ForeignKey is a reference from one or more local columns to key columns of
// another table. Columns and Keys correspond by position.
type ForeignKey struct {
	Columns    []string `json:"columns" yaml:"columns"`
	Keys       []string `json:"keys" yaml:"keys"`
	Table      string   `json:"table" yaml:"table"`
	Constraint string   `json:"constraint,omitempty" yaml:"constraint,omitempty"`
}

// Validate checks the positional pairing of local and referenced columns.
func (fk ForeignKey) Validate() error {
	if len(fk.Columns) == 0 {
		return fmt.Errorf("foreign key to %s has no columns", fk.Table)
	}
	if len(fk.Columns) != len(fk.Keys) {
		return fmt.Errorf("foreign key to %s pairs %d columns with %d keys", fk.Table, len(fk.Columns), len(fk.Keys))
	}
	return nil
}

// Provider answers schema questions about a single table at a time.
type Provider interface {
	// TableColumns returns the columns of table in schema order.
	TableColumns(ctx context.Context, table string) ([]Column, error)

	// IndexedColumns returns the names of columns that take part in an index.
	IndexedColumns(ctx context.Context, table string) ([]string, error)

	// ForeignKeys returns the foreign keys declared on table.
	ForeignKeys(ctx context.Context, table string) ([]ForeignKey, error)
}

// TableColNames returns the column names of table in schema order.
func TableColNames(ctx context.Context, p Provider, table string) ([]string, error) {
	cols, err := p.TableColumns(ctx, table)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names, nil
}

// TableLister is implemented by providers that can enumerate base tables.
type TableLister interface {
	TableNames(ctx context.Context) ([]string, error)
}
