package db

import (
	"context"
	"fmt"

	"scaffoldgen/internal/inflection"
	"scaffoldgen/internal/introspect"
	"scaffoldgen/internal/logger"
	"scaffoldgen/internal/report"
)

// Columns describes the result columns of query without fetching any rows.
// Namespaced names are not known to the database and are left empty.
func (c *Conn) Columns(ctx context.Context, query string) ([]report.Column, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	rows, err := c.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM (%s) q WHERE 1 = 0", query))
	if err != nil {
		return nil, fmt.Errorf("describe query: %w", err)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("describe query: %w", err)
	}
	cols := make([]report.Column, len(types))
	for i, ct := range types {
		raw := ct.DatabaseTypeName()
		st := introspect.NormalizeType(raw)
		if st == introspect.TypeUnmapped {
			logger.Debug("result column %s has unmapped type %q", ct.Name(), raw)
		}
		cols[i] = report.Column{
			Name:       ct.Name(),
			SequenceNo: i + 1,
			Caption:    inflection.Titleize(ct.Name()),
			DataType:   st,
			RawType:    raw,
		}
	}
	return cols, rows.Err()
}
