package extractors

import (
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"scaffoldgen/internal/introspect"
	"scaffoldgen/internal/logger"
)

// newColumn builds a column from the raw values every dialect reports.
func newColumn(name, rawType string, nullable bool, maxLen sql.NullInt64, dflt sql.NullString) introspect.Column {
	col := introspect.Column{
		Name:      name,
		Type:      introspect.NormalizeType(rawType),
		RawType:   rawType,
		AllowNull: nullable,
	}
	// -1 is how sql server reports (max)
	if maxLen.Valid && maxLen.Int64 > 0 {
		n := int(maxLen.Int64)
		col.MaxLength = &n
	}
	if dflt.Valid {
		d := dflt.String
		col.Default = &d
	}
	if col.Type == introspect.TypeUnmapped {
		logger.Debug("column %s has unmapped type %q", name, rawType)
	}
	return col
}

// scanNames collects the single string column of every row.
func scanNames(rows *sql.Rows) ([]string, error) {
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// markPrimaryKeys flags the named columns as primary key.
func markPrimaryKeys(cols []introspect.Column, pks []string) {
	for i := range cols {
		if slices.Contains(pks, cols[i].Name) {
			cols[i].PrimaryKey = true
		}
	}
}

// splitQualified splits "schema.table"; schema is empty when not given.
func splitQualified(table string) (schema, name string) {
	if i := strings.LastIndex(table, "."); i >= 0 {
		return table[:i], table[i+1:]
	}
	return "", table
}
