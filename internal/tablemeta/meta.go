// Package tablemeta describes one table as the scaffold generator sees it.
package tablemeta

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"scaffoldgen/internal/introspect"
	"scaffoldgen/internal/logger"
)

// ErrColumnNotFound is returned for a column the table does not have.
var ErrColumnNotFound = errors.New("column not found")

// DefaultKeySuffix marks foreign key columns by name.
const DefaultKeySuffix = "_id"

// FKRef is the target of a local foreign key column.
type FKRef struct {
	Table string
	Keys  []string
}

// Meta holds the columns, indexes and foreign keys of one table.
// It is read-only once loaded.
type Meta struct {
	Table string

	columns     []introspect.Column
	indexed     []string
	foreigns    []introspect.ForeignKey
	colLookup   map[string]introspect.Column
	fkLookup    map[string]FKRef
	keySuffix   string
	diagnostics []string
}

// Load introspects table through p. Errors from the provider are returned as is.
func Load(ctx context.Context, p introspect.Provider, table string) (*Meta, error) {
	cols, err := p.TableColumns(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: %s", introspect.ErrTableNotFound, table)
	}
	idx, err := p.IndexedColumns(ctx, table)
	if err != nil {
		return nil, err
	}
	fks, err := p.ForeignKeys(ctx, table)
	if err != nil {
		return nil, err
	}
	return New(table, cols, idx, fks), nil
}

// New builds a Meta from already introspected parts. When two foreign keys
// claim the same local column the first one is kept and the clash is recorded
// in Diagnostics.
func New(table string, cols []introspect.Column, indexed []string, fks []introspect.ForeignKey) *Meta {
	m := &Meta{
		Table:     table,
		columns:   cols,
		indexed:   indexed,
		foreigns:  fks,
		colLookup: make(map[string]introspect.Column, len(cols)),
		fkLookup:  make(map[string]FKRef),
		keySuffix: DefaultKeySuffix,
	}
	for _, c := range cols {
		m.colLookup[c.Name] = c
	}
	for _, fk := range fks {
		for _, c := range fk.Columns {
			if prev, ok := m.fkLookup[c]; ok {
				msg := fmt.Sprintf("%s.%s is used by foreign keys to %s and %s; keeping %s", table, c, prev.Table, fk.Table, prev.Table)
				m.diagnostics = append(m.diagnostics, msg)
				logger.Warn("%s", msg)
				continue
			}
			m.fkLookup[c] = FKRef{Table: fk.Table, Keys: fk.Keys}
		}
	}
	return m
}

// WithKeySuffix returns m using suffix to recognise foreign key columns.
func (m *Meta) WithKeySuffix(suffix string) *Meta {
	if suffix != "" {
		m.keySuffix = suffix
	}
	return m
}

// KeySuffix is the foreign key column suffix.
func (m *Meta) KeySuffix() string { return m.keySuffix }

// Columns returns the columns in schema order.
func (m *Meta) Columns() []introspect.Column { return slices.Clone(m.columns) }

// ColumnNames returns the column names in schema order.
func (m *Meta) ColumnNames() []string {
	names := make([]string, len(m.columns))
	for i, c := range m.columns {
		names[i] = c.Name
	}
	return names
}

// IndexedColumns returns the names of indexed columns.
func (m *Meta) IndexedColumns() []string { return slices.Clone(m.indexed) }

// IsIndexed reports whether name takes part in an index.
func (m *Meta) IsIndexed(name string) bool { return slices.Contains(m.indexed, name) }

// ForeignKeys returns the foreign keys in declaration order.
func (m *Meta) ForeignKeys() []introspect.ForeignKey { return slices.Clone(m.foreigns) }

// Diagnostics returns notes about ambiguous metadata found while loading.
func (m *Meta) Diagnostics() []string { return slices.Clone(m.diagnostics) }

// Column looks up a column by name.
func (m *Meta) Column(name string) (introspect.Column, bool) {
	c, ok := m.colLookup[name]
	return c, ok
}

// HasColumn reports whether the table has a column called name.
func (m *Meta) HasColumn(name string) bool {
	_, ok := m.colLookup[name]
	return ok
}

// ForeignKeyFor returns the referenced table and keys for a local column.
func (m *Meta) ForeignKeyFor(name string) (FKRef, bool) {
	r, ok := m.fkLookup[name]
	return r, ok
}

// IsKeyColumn reports whether name carries the foreign key suffix.
func (m *Meta) IsKeyColumn(name string) bool {
	return strings.HasSuffix(name, m.keySuffix)
}

// ColumnsWithout returns the column names in schema order minus excluded.
func (m *Meta) ColumnsWithout(excluded ...string) []string {
	out := make([]string, 0, len(m.columns))
	for _, c := range m.columns {
		if !slices.Contains(excluded, c.Name) {
			out = append(out, c.Name)
		}
	}
	return out
}

// PrimaryKey returns the name of the primary key column, "id" when none is flagged.
func (m *Meta) PrimaryKey() string {
	for _, c := range m.columns {
		if c.PrimaryKey {
			return c.Name
		}
	}
	return "id"
}

// LikelyLabelField picks the column that best names a row: the first string
// column that is neither the primary key nor a foreign key. Falls back to the
// primary key.
func (m *Meta) LikelyLabelField() string {
	pk := m.PrimaryKey()
	for _, c := range m.columns {
		if c.Name == pk || c.Name == "id" || m.IsKeyColumn(c.Name) {
			continue
		}
		if c.Type == introspect.TypeString {
			return c.Name
		}
	}
	return pk
}

// ActiveColumnPresent reports whether the table has a soft delete "active" column.
func (m *Meta) ActiveColumnPresent() bool {
	return m.HasColumn("active")
}

func (m *Meta) column(name string) (introspect.Column, error) {
	c, ok := m.colLookup[name]
	if !ok {
		return c, fmt.Errorf("%w: %s.%s", ErrColumnNotFound, m.Table, name)
	}
	return c, nil
}

// ColumnEntityType maps a column onto its entity field type.
func (m *Meta) ColumnEntityType(name string) (string, error) {
	c, err := m.column(name)
	if err != nil {
		return "", err
	}
	return EntityType(c.Type, c.RawType), nil
}

// ColumnValidationType maps a column onto its validation schema field type.
func (m *Meta) ColumnValidationType(name string) (string, error) {
	c, err := m.column(name)
	if err != nil {
		return "", err
	}
	return ValidationType(c.Type, c.RawType), nil
}

// ColumnValidationExpect maps a column onto its shape rule.
func (m *Meta) ColumnValidationExpect(name string) (string, error) {
	c, err := m.column(name)
	if err != nil {
		return "", err
	}
	return ValidationExpect(c.Type, c.RawType), nil
}

// ColumnValidationArrayExtra maps a column onto its element rule.
func (m *Meta) ColumnValidationArrayExtra(name string) (string, error) {
	c, err := m.column(name)
	if err != nil {
		return "", err
	}
	return ValidationArrayExtra(c.Type), nil
}

// ColumnControl is the form control for a column. Foreign key columns with a
// known target become selects.
func (m *Meta) ColumnControl(name string) (string, error) {
	c, err := m.column(name)
	if err != nil {
		return "", err
	}
	if _, ok := m.fkLookup[name]; ok && m.IsKeyColumn(name) {
		return "select", nil
	}
	return ControlKind(c.Type, c.RawType), nil
}
